/*
Package handler provides HTTP handler functions for inspecting live rooms.
*/
package handler

import (
	"net/http"

	"eventchat/internal/pkg/resp"
)

// HandleListRooms returns every non-empty room with its member count.
func HandleListRooms(deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		resp.RespondSuccess(w, map[string]any{
			"rooms": deps.Gateway.Directory().Rooms(),
		})
	}
}
