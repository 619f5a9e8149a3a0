/*
Package handler provides the HTTP handlers and routing setup for the plaza server.

This file holds the WebSocket handler that opens a viewing session: it
upgrades the connection, seeds the session with today's roster, wires live
login events into the session's queue, and runs the client pumps.
*/
package handler

import (
	"net"
	"net/http"

	"github.com/gorilla/websocket"

	"plaza/internal/app/plaza"
	"plaza/internal/app/user"
	"plaza/internal/pkg/errs"
	"plaza/internal/pkg/limiter"
	"plaza/internal/pkg/logx"
	"plaza/internal/pkg/randx"
	"plaza/internal/pkg/resp"
)

// HandleWebSocket opens a plaza viewing session over WebSocket for the user
// named by the uid query parameter. The user must have logged in first.
func HandleWebSocket(upgrader websocket.Upgrader, rateLimiter *limiter.IPRateLimiter, deps *AppDeps) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ip, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			ip = r.RemoteAddr
		}

		if ip == "" {
			ip = "unknown_ip"
		}

		if !rateLimiter.GetLimiter(ip).Allow() {
			logx.Warn("WebSocket connection rejected: Rate limit exceeded.", "ip", ip)
			resp.RespondError(w, r, errs.NewError(errs.ErrRateLimitExceeded))
			return
		}

		viewerID := r.URL.Query().Get("uid")
		if !randx.IsValidUserID(viewerID) {
			logx.Warn("WebSocket request rejected: Missing or malformed uid", "uid", viewerID)
			resp.RespondError(w, r, errs.NewError(errs.ErrInvalidParams))
			return
		}

		viewer, ok := deps.Registry.Snapshot(viewerID)
		if !ok {
			logx.Info("WebSocket connection rejected: Viewer has never logged in.", "viewer_id", viewerID)
			resp.RespondError(w, r, errs.NewError(errs.ErrUserNotFound))
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			logx.Error(err, "Failed to upgrade connection to WebSocket")
			return
		}

		session := deps.Manager.CreateSession(viewerID)
		client := plaza.NewClient(session, conn, viewer)

		go client.WritePump()
		go client.PumpEvents()

		roster := deps.Registry.RosterToday(deps.Today())

		if err := client.SendInitData(roster); err != nil {
			logx.Error(err, "Failed to send initial plaza state", "viewer_id", viewerID)
			session.Stop()
			conn.Close()
			return
		}

		// Seed the session with everyone already present, then keep feeding it
		// fresh logins until the connection drops. The session itself filters
		// the viewer and repeat visitors.
		for _, visitor := range roster {
			session.Enqueue(visitor)
		}

		unsubscribe := deps.Broadcaster.Subscribe(func(snap user.Snapshot) {
			session.Enqueue(snap)
		})
		defer unsubscribe()

		logx.Info("Viewing session established", "viewer_id", viewerID, "session_id", session.ID)

		client.ReadPump()
	}
}
