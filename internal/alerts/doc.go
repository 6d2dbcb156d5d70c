// Package alerts pushes live sale countdown updates over websockets.
//
// A client connects to the feed and sends watch requests naming a sale id and
// target date. The Hub answers each watch with the current countdown status
// and re-classifies every watch on a ticker, pushing an update only when the
// bucket or label changed.
//
// Protocol (JSON text frames):
//
//	client -> server  {"type":"watch","id":"lot-7","target":"2026-11-02"}
//	client -> server  {"type":"unwatch","id":"lot-7"}
//	client -> server  {"type":"heartbeat"}
//	server -> client  {"type":"connection","client_id":"..."}
//	server -> client  {"type":"countdown","id":"lot-7","status":{...}}
//	server -> client  {"type":"unwatched","id":"lot-7"}
//	server -> client  {"type":"error","id":"lot-7","error":"..."}
//
// The Hub goroutine owns client registration and all watch state; clients
// reach it only through channels.
package alerts
