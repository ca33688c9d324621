// Package scores keeps the leaderboard of finished and abandoned games.
//
// Three service.ScoreStore implementations are provided:
//   - MemoryStore keeps entries in process, for tests and the play command
//   - SQLiteStore writes to a local SQLite file (pure Go driver, no cgo)
//   - RedisStore ranks games in a Redis sorted set shared between servers
//
// Every store returns entries ordered by score, highest first. Ties go to the
// game recorded first.
package scores
