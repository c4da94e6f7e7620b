package server

import (
	"bytes"
	"encoding/json"
	"net/http"

	apperrors "github.com/EGRM23/fisica-computacional-2024/internal/errors"
	"github.com/EGRM23/fisica-computacional-2024/internal/objectives"
)

// JSON-RPC 2.0 error codes. The -3200x range is reserved for the service.
const (
	rpcParseError     = -32700
	rpcInvalidRequest = -32600
	rpcMethodNotFound = -32601
	rpcInvalidParams  = -32602
	rpcServerError    = -32000
	rpcNotFound       = -32001
	rpcConflict       = -32002
)

type rpcRequest struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      interface{}     `json:"id"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

// decodeParams accepts params either as an object or as an array whose
// first element is the object.
func decodeParams(raw json.RawMessage, v interface{}) error {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 {
		return apperrors.New("missing required parameters").WithCode(CodeInvalidParams)
	}
	if raw[0] == '[' {
		var list []json.RawMessage
		if err := json.Unmarshal(raw, &list); err != nil {
			return invalidParams(err)
		}
		if len(list) == 0 {
			return apperrors.New("missing required parameters").WithCode(CodeInvalidParams)
		}
		raw = list[0]
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return invalidParams(err)
	}
	return nil
}

func rpcCode(err error) int {
	switch apperrors.CodeOf(err) {
	case CodeInvalidParams:
		return rpcInvalidParams
	case CodeNotFound:
		return rpcNotFound
	case CodeConflict:
		return rpcConflict
	default:
		return rpcServerError
	}
}

// handleJSONRPC handles JSON-RPC 2.0 requests
func (s *Server) handleJSONRPC(w http.ResponseWriter, r *http.Request) {
	var request rpcRequest
	if err := json.NewDecoder(r.Body).Decode(&request); err != nil {
		s.respondWithError(w, rpcParseError, "Parse error", nil)
		return
	}
	if request.JSONRPC != "2.0" || request.Method == "" {
		s.respondWithError(w, rpcInvalidRequest, "Invalid Request", request.ID)
		return
	}

	var result interface{}
	var err error

	switch request.Method {
	case "optimization.start":
		var p StartParams
		if err = decodeParams(request.Params, &p); err == nil {
			var state *OptimizationState
			if state, err = s.startJob(p); err == nil {
				result = map[string]interface{}{
					"optimization_id": state.ID,
					"status":          StatusPending,
				}
			}
		}
	case "optimization.status":
		var p IDParams
		if err = s.decodeID(request.Params, &p); err == nil {
			result, err = s.status(p.OptimizationID)
		}
	case "optimization.cancel":
		var p IDParams
		if err = s.decodeID(request.Params, &p); err == nil {
			if err = s.cancelJob(p.OptimizationID); err == nil {
				result = map[string]interface{}{
					"optimization_id": p.OptimizationID,
					"status":          StatusCancelled,
				}
			}
		}
	case "objectives.list":
		result = objectives.All()
	default:
		s.respondWithError(w, rpcMethodNotFound, "Method not found", request.ID)
		return
	}

	if err != nil {
		s.respondWithError(w, rpcCode(err), err.Error(), request.ID)
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"id":      request.ID,
		"result":  result,
	})
}

func (s *Server) decodeID(raw json.RawMessage, p *IDParams) error {
	if err := decodeParams(raw, p); err != nil {
		return err
	}
	if p.OptimizationID == "" {
		return apperrors.New("optimization_id is required").WithCode(CodeInvalidParams)
	}
	return nil
}

// respondWithError sends a JSON-RPC 2.0 error response
func (s *Server) respondWithError(w http.ResponseWriter, code int, message string, id interface{}) {
	s.logger.Warn("RPC error", map[string]interface{}{
		"code":    code,
		"message": message,
	})

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"jsonrpc": "2.0",
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
		"id": id,
	})
}
