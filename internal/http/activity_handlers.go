package httpx

import (
	"net/http"
	"time"

	"github.com/splax/shiftwatch/internal/policy"
	"github.com/splax/shiftwatch/internal/ws"
)

const streamDenied = "Only admins can follow organization activity"

// handleActivityWS upgrades the connection and relays organization activity until the peer leaves.
func (r *Router) handleActivityWS(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	if err := policy.AdminOnly(p, streamDenied).Err(); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	conn, err := r.upgrader.Upgrade(w, req, nil)
	if err != nil {
		r.logger.Error("websocket upgrade failed", "error", err)
		return
	}
	client := ws.NewClient(conn, r.logger, r.opts.WriteTimeout)
	hub := r.activity.Hub()
	hub.Register(p.OrganizationID, client)
	done := r.trackStream("websocket")
	r.logger.Info("activity subscriber connected", "transport", "websocket", "admin_id", p.ID, "organization_id", p.OrganizationID)

	stop := make(chan struct{})
	go func() {
		ticker := time.NewTicker(r.opts.StreamInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if err := client.Ping(); err != nil {
					client.Close()
					return
				}
			case <-stop:
				return
			}
		}
	}()
	go func() {
		defer func() {
			close(stop)
			hub.Unregister(p.OrganizationID, client)
			client.Close()
			done()
			r.logger.Info("activity subscriber disconnected", "transport", "websocket", "admin_id", p.ID)
		}()
		client.Wait()
	}()
}

// handleActivitySSE streams the same feed as Server-Sent Events for clients without websockets.
func (r *Router) handleActivitySSE(w http.ResponseWriter, req *http.Request) {
	p, ok := r.principal(w, req)
	if !ok {
		return
	}
	if err := policy.AdminOnly(p, streamDenied).Err(); err != nil {
		r.writeServiceError(w, req, err)
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming unsupported")
		return
	}
	headers := w.Header()
	headers.Set("Content-Type", "text/event-stream")
	headers.Set("Cache-Control", "no-cache")
	headers.Set("Connection", "keep-alive")
	headers.Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	client := ws.NewSSEClient(w, flusher, r.logger)
	hub := r.activity.Hub()
	hub.Register(p.OrganizationID, client)
	done := r.trackStream("sse")
	defer func() {
		hub.Unregister(p.OrganizationID, client)
		client.Close()
		done()
	}()

	ticker := time.NewTicker(r.opts.StreamInterval)
	defer ticker.Stop()
	for {
		select {
		case <-req.Context().Done():
			return
		case <-client.Done():
			return
		case <-ticker.C:
			if time.Since(client.LastActivity()) < r.opts.StreamInterval {
				continue
			}
			if err := client.Heartbeat(); err != nil {
				return
			}
		}
	}
}
