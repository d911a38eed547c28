// Package session provides session management for Pushbox.
//
// The session package implements:
//   - Thread-safe session storage and retrieval
//   - Short random session IDs
//   - Expiry of idle sessions
//   - Write-through persistence to files or Redis
//
// Core Types:
//
// Manager is the session manager used by the game service. Persistence is
// the storage contract; FilePersistence keeps one JSON file per session and
// RedisPersistence one key per session plus an index set.
//
// Concurrency:
//
// The manager map is guarded by a RWMutex. Each session carries its own lock
// which the service holds around every engine call. Manager.Save and
// Manager.SaveAll take the session lock themselves, so the lock order is
// always manager first, then session.
//
// Usage:
//
//	store, err := session.NewFilePersistence("sessions", levelMgr)
//	if err != nil {
//		log.Fatal(err)
//	}
//	manager := session.NewManagerWithPersistence(store)
//	if err := manager.LoadPersistedSessions(); err != nil {
//		log.Fatal(err)
//	}
//
//	sess, err := manager.Create("", "classic", level)
package session
