package api

import (
	"context"
	"encoding/json"
	"net/http"

	ws "github.com/openfga-dslc/openfga-dslc/internal/web/websocket"
)

// handleWebsocket upgrades a connection into the live-compile stream: the
// client sends {"type":"compile","data":{"source":"..."}} messages and
// receives {"type":"compiled"|"error",...} responses, recompiling on every
// message rather than on every keystroke.
func (h *Handler) handleWebsocket(w http.ResponseWriter, r *http.Request) {
	upgrader := ws.NewUpgrader(ws.DefaultConfig(), h.hub)
	upgrader.ServeHTTP(w, r)
}

func (h *Handler) handleCompileMessage(ctx context.Context, client *ws.Client, message *ws.Message) error {
	var req compileRequest
	if err := json.Unmarshal(message.Data, &req); err != nil {
		client.SendError("invalid compile request")
		return nil
	}

	model, err := compileSource(req.Source)
	if err != nil {
		client.SendError(err.Error())
		return nil
	}

	return client.SendJSON("compiled", compileResponse{Model: model})
}
