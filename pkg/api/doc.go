// Package api defines the wire messages and Connect service bindings for the
// ledger's RPC surface.
//
// Messages are plain Go structs carried as JSON through a Connect codec, so
// any Connect client speaking application/json can call the services:
//
//	POST /splitledger.v1.GroupService/GetGroupExpenses
//	Content-Type: application/json
//
//	{"groupId": "..."}
//
// Each service has a handler constructor returning the path prefix to mount
// and an http.Handler, and a typed client.
package api
