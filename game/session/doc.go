// Package session keeps the in-memory set of game sessions.
//
// Each Session owns one engine.GameEngine, the config it was created from and
// its creation and last access times. IDs are looked up case-insensitively;
// an empty ID on Create gets a random 4-character hex one.
//
// The Manager guards its map with a RWMutex. Engines are not locked here;
// the game service holds its own lock around every engine call.
//
//	manager := session.NewManager()
//	sess, err := manager.Create("", config)
//	if err != nil {
//		return err
//	}
//	sess.Engine.Move(engine.Left)
//
// Tests and tools that need reproducible boards pass WithRandomSource.
//
// Sessions are never written to disk. ExpiredSessions only reports idle IDs;
// the caller deletes them through the game service so that unfinished games
// still reach the leaderboard.
package session
