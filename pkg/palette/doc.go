// Package palette assigns stable fill colors to node types.
//
// A [Table] maps a type name to one color of a fixed twelve-color palette.
// The same type always receives the same color for the lifetime of the
// table's [Store], and the empty (null) type always receives [Neutral].
// The nine core types of the modeling application are seeded in order so
// they keep the first nine slots under every strategy:
//
//	Entity, TextCollection, TextNode, Practice, Event, Rule, Claim,
//	MediaAsset, Note
//
// Two strategies decide the slot for any other type:
//
//   - [StrategyHash] (default) hashes the type name, so independent tables
//     agree without sharing state
//   - [StrategyFirstSeen] hands out the next slot in order of first request,
//     cycling when the palette is exhausted
//
// # Ownership
//
// Tables are ordinary values owned by the caller; there is no package-level
// table. Share one table between renders to keep colors stable, or inject a
// [RedisStore] to share assignments between processes:
//
//	table := palette.New(palette.WithStore(palette.NewRedisStore(client, "")))
//	fill := table.ColorFor("Practice")
//	stroke := palette.Stroke(fill)
//
// [Table.Reset] clears every non-seeded assignment.
package palette
