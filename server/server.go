// Package server exposes the PLL configurator over HTTP.
package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net"
	"net/http"
	"os"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/sarchlab/caravelpll/idgen"
	"github.com/sarchlab/caravelpll/pll"
	"github.com/sarchlab/caravelpll/report"
)

// Server answers PLL configuration queries.
type Server struct {
	portNumber int
	defaults   pll.Request
	logger     *log.Logger
	ids        idgen.Generator
}

// NewServer creates a Server that uses the Caravel defaults and a random
// port.
func NewServer() *Server {
	return &Server{
		defaults: pll.Request{
			ClkIn:   pll.DefaultClkIn,
			PLLLow:  pll.DefaultPLLLowLimit,
			PLLHigh: pll.DefaultPLLHighLimit,
		},
		ids: idgen.NewParallel(),
	}
}

// WithPortNumber sets the port number of the server.
func (s *Server) WithPortNumber(portNumber int) *Server {
	if portNumber != 0 && portNumber < 1000 {
		fmt.Fprintf(os.Stderr,
			"Port number %d is assigned to the PLL server, "+
				"which is not allowed. Using a random port instead.\n",
			portNumber)
		portNumber = 0
	}

	s.portNumber = portNumber

	return s
}

// WithDefaults sets the clkin and PLL limits used when a query omits them.
func (s *Server) WithDefaults(clkIn, pllLow, pllHigh pll.Freq) *Server {
	s.defaults.ClkIn = clkIn
	s.defaults.PLLLow = pllLow
	s.defaults.PLLHigh = pllHigh

	return s
}

// WithLogger logs the search of every request into logger.
func (s *Server) WithLogger(logger *log.Logger) *Server {
	s.logger = logger
	return s
}

// Router returns the HTTP routes of the server.
func (s *Server) Router() *mux.Router {
	r := mux.NewRouter()

	r.HandleFunc("/api/config", s.configure).Methods(http.MethodGet)
	r.HandleFunc("/api/registers/{reg0x11}/{reg0x12}", s.decodeRegisters).
		Methods(http.MethodGet)
	r.HandleFunc("/api/limits", s.limits).Methods(http.MethodGet)

	return r
}

// ListenAndServe serves until the listener fails.
func (s *Server) ListenAndServe() error {
	actualPort := ":0"
	if s.portNumber > 1000 {
		actualPort = ":" + strconv.Itoa(s.portNumber)
	}

	listener, err := net.Listen("tcp", actualPort)
	if err != nil {
		return err
	}

	fmt.Fprintf(
		os.Stderr,
		"Serving PLL configurations on http://localhost:%d\n",
		listener.Addr().(*net.TCPAddr).Port)

	return http.Serve(listener, s.Router())
}

type errorResponse struct {
	Error string     `json:"error"`
	For   pll.Output `json:"for,omitempty"`
}

type limitsResponse struct {
	ClkIn        float64 `json:"clkin"`
	PLLLowLimit  float64 `json:"pll_low_limit"`
	PLLHighLimit float64 `json:"pll_high_limit"`
}

type registersResponse struct {
	FBDiv    int      `json:"fbdiv"`
	Div1     int      `json:"div1"`
	Div2     int      `json:"div2"`
	ClkOut   *float64 `json:"clkout,omitempty"`
	ClkOut90 *float64 `json:"clkout90,omitempty"`
}

func (s *Server) configure(w http.ResponseWriter, r *http.Request) {
	req, err := s.parseRequest(r)
	if err == nil {
		err = req.Validate()
	}
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	builder := pll.MakeBuilder().WithIDGenerator(s.ids)
	if s.logger != nil {
		builder = builder.WithLogger(s.logger)
	}

	result, err := builder.Build().Configure(req)

	var noSolution *pll.NoSolutionError
	switch {
	case errors.As(err, &noSolution):
		s.writeJSON(w, http.StatusUnprocessableEntity, errorResponse{
			Error: err.Error(),
			For:   noSolution.For,
		})
		return
	case err != nil:
		s.writeJSON(w, http.StatusInternalServerError,
			errorResponse{Error: err.Error()})
		return
	}

	w.Header().Set("X-Run-ID", result.RunID)
	s.writeJSON(w, http.StatusOK, report.NewDocument(result))
}

func (s *Server) parseRequest(r *http.Request) (pll.Request, error) {
	q := r.URL.Query()
	req := s.defaults

	if q.Get("clkout") == "" {
		return req, fmt.Errorf("%w: clkout is required", pll.ErrInvalidRequest)
	}

	params := []struct {
		name string
		dst  *pll.Freq
	}{
		{"clkin", &req.ClkIn},
		{"clkout", &req.ClkOut},
		{"clkout90", &req.ClkOut90},
		{"pll_low", &req.PLLLow},
		{"pll_high", &req.PLLHigh},
	}

	for _, p := range params {
		v := q.Get(p.name)
		if v == "" {
			continue
		}

		f, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return req, fmt.Errorf("%w: %s: %v",
				pll.ErrInvalidRequest, p.name, err)
		}

		*p.dst = pll.Freq(f)
	}

	if v := q.Get("allow_deviation"); v != "" {
		allow, err := strconv.ParseBool(v)
		if err != nil {
			return req, fmt.Errorf("%w: allow_deviation: %v",
				pll.ErrInvalidRequest, err)
		}

		req.AllowDeviation = allow
	}

	return req, nil
}

func (s *Server) decodeRegisters(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	reg0x11, err := parseRegister(vars["reg0x11"], 0x3f)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	reg0x12, err := parseRegister(vars["reg0x12"], 0x1f)
	if err != nil {
		s.writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error()})
		return
	}

	d1, d2, m := pll.RegisterPair{Reg0x11: reg0x11, Reg0x12: reg0x12}.Decode()
	rsp := registersResponse{FBDiv: m, Div1: d1, Div2: d2}

	if v := r.URL.Query().Get("clkin"); v != "" && d1 != 0 && d2 != 0 {
		clkIn, err := strconv.ParseFloat(v, 64)
		if err != nil {
			s.writeJSON(w, http.StatusBadRequest,
				errorResponse{Error: "clkin: " + err.Error()})
			return
		}

		pllFreq := pll.Freq(clkIn).Multiply(m)
		clkOut := float64(pllFreq.Divide(d1))
		clkOut90 := float64(pllFreq.Divide(d2))
		rsp.ClkOut = &clkOut
		rsp.ClkOut90 = &clkOut90
	}

	s.writeJSON(w, http.StatusOK, rsp)
}

func parseRegister(s string, limit uint64) (uint8, error) {
	v, err := strconv.ParseUint(s, 0, 8)
	if err != nil {
		return 0, fmt.Errorf("register value %q: %w", s, err)
	}

	if v > limit {
		return 0, fmt.Errorf("register value %#x exceeds %#x", v, limit)
	}

	return uint8(v), nil
}

func (s *Server) limits(w http.ResponseWriter, _ *http.Request) {
	s.writeJSON(w, http.StatusOK, limitsResponse{
		ClkIn:        float64(s.defaults.ClkIn),
		PLLLowLimit:  float64(s.defaults.PLLLow),
		PLLHighLimit: float64(s.defaults.PLLHigh),
	})
}

func (s *Server) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	err := json.NewEncoder(w).Encode(v)
	if err != nil && s.logger != nil {
		s.logger.Printf("writing response: %v", err)
	}
}
