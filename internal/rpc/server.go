// Package rpc implements the JSON-RPC 2.0 API server and the staged
// request pipeline behind every wallet operation.
package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/Consensys/starknet-snap-sub002/config"
	"github.com/Consensys/starknet-snap-sub002/internal/account"
	"github.com/Consensys/starknet-snap-sub002/internal/chain"
	"github.com/Consensys/starknet-snap-sub002/internal/keyring"
	klog "github.com/Consensys/starknet-snap-sub002/internal/log"
	"github.com/Consensys/starknet-snap-sub002/internal/state"
	"github.com/Consensys/starknet-snap-sub002/internal/ui"
)

// maxBodySize is the maximum allowed request body size (1 MB).
const maxBodySize = 1 << 20

// Deps are the collaborators a Server needs. All of them are injected;
// the server holds no global state.
type Deps struct {
	Store    *state.Store
	Deriver  keyring.Deriver
	Dialog   ui.Dialog
	Fallback state.Network
	// Clients maps padded chain id hex to the node client for that
	// network. Networks without an entry get an empty-chain stub.
	Clients map[string]chain.Client
	// Preloaded tokens cannot be shadowed through watch-asset.
	Preloaded []state.Erc20Token
	MaxScan   uint32
}

// Server is the JSON-RPC 2.0 HTTP server.
type Server struct {
	addr     string
	deriver  keyring.Deriver
	dialog   ui.Dialog
	accounts *state.AccountStore
	networks *state.NetworkStore
	tokens   *state.TokenStore
	records  *state.TransactionStore
	requests *state.RequestStore
	resolver *account.Resolver

	clientMu sync.Mutex
	clients  map[string]chain.Client

	server      *http.Server
	ln          net.Listener
	logger      zerolog.Logger
	allowedNets []*net.IPNet // Empty = allow all.
	corsOrigins []string     // Empty = no CORS headers.
}

// New creates a new RPC server. The rpcCfg parameter controls IP filtering
// and CORS. A zero-value RPCConfig allows all IPs and disables CORS.
func New(addr string, deps Deps, rpcCfg ...config.RPCConfig) *Server {
	accounts := state.NewAccountStore(deps.Store)
	clients := deps.Clients
	if clients == nil {
		clients = make(map[string]chain.Client)
	}
	s := &Server{
		addr:     addr,
		deriver:  deps.Deriver,
		dialog:   deps.Dialog,
		accounts: accounts,
		networks: state.NewNetworkStore(deps.Store, deps.Fallback),
		tokens:   state.NewTokenStore(deps.Store, deps.Preloaded),
		records:  state.NewTransactionStore(deps.Store),
		requests: state.NewRequestStore(deps.Store),
		resolver: account.NewResolver(accounts, deps.Deriver, deps.MaxScan),
		clients:  clients,
		logger:   klog.WithComponent("rpc"),
	}

	if len(rpcCfg) > 0 {
		s.allowedNets = parseAllowedIPs(rpcCfg[0].AllowedIPs)
		s.corsOrigins = rpcCfg[0].CORSOrigins
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleRequest)

	s.server = &http.Server{
		Handler:     mux,
		ReadTimeout: 30 * time.Second,
		// Confirmation dialogs are intentionally long-running.
		WriteTimeout: 10 * time.Minute,
	}

	return s
}

// clientFor returns the node client bound to the given network. Networks
// never wired with a client fall back to an empty-chain stub.
func (s *Server) clientFor(network state.Network) chain.Client {
	s.clientMu.Lock()
	defer s.clientMu.Unlock()
	key := network.ChainID.PaddedHex()
	if c, ok := s.clients[key]; ok {
		return c
	}
	c := chain.NewStub(network.ChainID)
	s.clients[key] = c
	return c
}

// parseAllowedIPs converts string IP/CIDR entries into net.IPNet.
func parseAllowedIPs(entries []string) []*net.IPNet {
	var nets []*net.IPNet
	for _, entry := range entries {
		_, ipNet, err := net.ParseCIDR(entry)
		if err == nil {
			nets = append(nets, ipNet)
			continue
		}
		// Try as a single IP (add /32 or /128).
		ip := net.ParseIP(entry)
		if ip == nil {
			continue
		}
		bits := 32
		if ip.To4() == nil {
			bits = 128
		}
		nets = append(nets, &net.IPNet{IP: ip, Mask: net.CIDRMask(bits, bits)})
	}
	return nets
}

// Start begins listening and serving in a background goroutine.
// It returns immediately after the listener is bound.
func (s *Server) Start() error {
	ln, err := net.Listen("tcp", s.addr)
	if err != nil {
		return fmt.Errorf("rpc listen: %w", err)
	}
	s.ln = ln

	go func() {
		if err := s.server.Serve(ln); err != nil && err != http.ErrServerClosed {
			s.logger.Error().Err(err).Msg("RPC server error")
		}
	}()

	return nil
}

// Addr returns the listener address (useful when bound to :0).
func (s *Server) Addr() string {
	if s.ln != nil {
		return s.ln.Addr().String()
	}
	return s.addr
}

// Stop gracefully shuts down the server.
func (s *Server) Stop() error {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return s.server.Shutdown(ctx)
}

// isIPAllowed checks the allow-list.
func (s *Server) isIPAllowed(ip net.IP) bool {
	for _, ipNet := range s.allowedNets {
		if ipNet.Contains(ip) {
			return true
		}
	}
	return false
}

// setCORSHeaders writes CORS headers when origins are configured.
func (s *Server) setCORSHeaders(w http.ResponseWriter, r *http.Request) {
	if len(s.corsOrigins) == 0 {
		return
	}
	origin := r.Header.Get("Origin")
	for _, allowed := range s.corsOrigins {
		if allowed == "*" || allowed == origin {
			if allowed == "*" {
				w.Header().Set("Access-Control-Allow-Origin", "*")
			} else {
				w.Header().Set("Access-Control-Allow-Origin", origin)
			}
			w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
			w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
			return
		}
	}
}

// handleRequest is the main HTTP handler for JSON-RPC requests.
func (s *Server) handleRequest(w http.ResponseWriter, r *http.Request) {
	// IP filtering.
	if len(s.allowedNets) > 0 {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
		ip := net.ParseIP(host)
		if ip == nil || !s.isIPAllowed(ip) {
			http.Error(w, "forbidden", http.StatusForbidden)
			return
		}
	}

	s.setCORSHeaders(w, r)

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if r.Method != http.MethodPost {
		writeError(w, nil, CodeInvalidRequest, "only POST method is allowed")
		return
	}

	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize+1))
	if err != nil {
		writeError(w, nil, CodeParseError, "failed to read request body")
		return
	}
	if len(body) > maxBodySize {
		writeError(w, nil, CodeInvalidRequest, "request body too large")
		return
	}

	var req Request
	if err := json.Unmarshal(body, &req); err != nil {
		writeError(w, nil, CodeParseError, "invalid JSON")
		return
	}

	if req.JSONRPC != "2.0" {
		writeError(w, req.ID, CodeInvalidRequest, "jsonrpc must be \"2.0\"")
		return
	}

	result, rpcErr := s.dispatch(r.Context(), &req)
	if rpcErr != nil {
		writeJSON(w, Response{
			JSONRPC: "2.0",
			Error:   rpcErr,
			ID:      req.ID,
		})
		return
	}

	writeJSON(w, Response{
		JSONRPC: "2.0",
		Result:  result,
		ID:      req.ID,
	})
}

// dispatch routes a request to the appropriate operation.
func (s *Server) dispatch(ctx context.Context, req *Request) (interface{}, *Error) {
	op, ok := s.operation(req.Method)
	if !ok {
		return nil, &Error{Code: CodeMethodNotFound, Message: fmt.Sprintf("method not found: %s", req.Method)}
	}
	if err := parseParams(req, op.params); err != nil {
		return nil, err
	}

	c := &reqContext{ctx: ctx, params: op.params}
	if err := op.pipeline.run(s, c); err != nil {
		return nil, toWireError(err)
	}
	return c.result, nil
}

// parseParams re-marshals the raw params into the typed struct.
func parseParams(req *Request, out Params) *Error {
	if req.Params == nil {
		return nil
	}
	raw, err := json.Marshal(req.Params)
	if err != nil {
		return &Error{Code: CodeInvalidParams, Message: "invalid params"}
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Code: CodeInvalidParams, Message: fmt.Sprintf("invalid params: %v", err)}
	}
	return nil
}

func writeJSON(w http.ResponseWriter, resp Response) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		klog.RPC.Error().Err(err).Msg("Response write failed")
	}
}

func writeError(w http.ResponseWriter, id interface{}, code int, message string) {
	writeJSON(w, Response{
		JSONRPC: "2.0",
		Error:   &Error{Code: code, Message: message},
		ID:      id,
	})
}
