// Package bot connects the compositor to a chat room.
//
// A Handler receives room messages one at a time. Image messages are
// remembered per room by a Tracker. Text messages are checked against an
// ordered list of trigger Rules; a match takes the room's latest image,
// composes the sprite onto it, and posts the result back to the room under
// a name derived from the captured noun.
//
// The chat network itself is abstracted by Client, so the same handler runs
// against a real homeserver or the in-process transport used by the server
// package.
package bot
