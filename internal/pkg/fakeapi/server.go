package fakeapi

import (
	"bytes"
	"io/ioutil"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/jake-scott/lifx-cloud/pkg/lifx"
	"github.com/jake-scott/lifx-cloud/pkg/middlewares"
)

/*
 *  Server is an in-memory stand in for the LIFX cloud API.  It keeps a set
 *  of lights and scenes, applies commands to them, and records every request
 *  it sees.  Canned replies can be queued to simulate failures: while the
 *  queue is not empty each request is answered by the next reply instead of
 *  the normal handler.
 */
type Server struct {
	mu        sync.Mutex
	token     string
	lights    []lifx.Light
	scenes    []lifx.Scene
	replies   []Reply
	recorded  []Recorded
	logBodies bool
}

// Reply is a canned response
type Reply struct {
	Status int
	// encoded as JSON when not nil
	Body   interface{}
	Header map[string]string
}

// RateLimited is a 429 reply that says the limit lifts after d
func RateLimited(d time.Duration) Reply {
	reset := time.Now().Add(d).Unix()
	return Reply{
		Status: http.StatusTooManyRequests,
		Body:   errorBody{Error: "Rate limit exceeded"},
		Header: map[string]string{lifx.RateLimitResetHeader: strconv.FormatInt(reset, 10)},
	}
}

// Recorded is a request seen by the server
type Recorded struct {
	Method string
	// escaped path and query, relative to the server root
	Path   string
	Header http.Header
	Body   []byte
}

func New(token string) *Server {
	return &Server{token: token}
}

func (s *Server) WithLights(lights ...lifx.Light) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lights = append(s.lights, lights...)
	return s
}

func (s *Server) WithScenes(scenes ...lifx.Scene) *Server {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.scenes = append(s.scenes, scenes...)
	return s
}

// WithBodyLogging logs request and response bodies at debug level
func (s *Server) WithBodyLogging(on bool) *Server {
	s.logBodies = on
	return s
}

// Queue adds canned replies for the next requests
func (s *Server) Queue(replies ...Reply) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.replies = append(s.replies, replies...)
}

func (s *Server) Requests() []Recorded {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Recorded(nil), s.recorded...)
}

func (s *Server) Lights() []lifx.Light {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]lifx.Light(nil), s.lights...)
}

// Handler returns the API routes behind the usual middleware chain
func (s *Server) Handler() http.Handler {
	r := mux.NewRouter().UseEncodedPath()
	r.Use(middlewares.NewAccessLogMw(s.logBodies))
	r.Use(middlewares.NewRecoveryMw())
	r.Use(middlewares.NewCorrelationMw("X-Correlation-ID"))
	r.Use(s.record)
	r.Use(s.authenticate)
	r.Use(s.canned)

	v1 := r.PathPrefix("/v1").Subrouter()
	v1.HandleFunc("/lights/states", s.setStates).Methods(http.MethodPut)
	v1.HandleFunc("/lights/{selector}", s.listLights).Methods(http.MethodGet)
	v1.HandleFunc("/lights/{selector}/state", s.setState).Methods(http.MethodPut)
	v1.HandleFunc("/lights/{selector}/state/delta", s.changeState).Methods(http.MethodPost)
	v1.HandleFunc("/lights/{selector}/toggle", s.toggle).Methods(http.MethodPost)
	v1.HandleFunc("/lights/{selector}/cycle", s.cycle).Methods(http.MethodPost)
	v1.HandleFunc("/lights/{selector}/effects/{effect:breathe|pulse}", s.effect).Methods(http.MethodPost)
	v1.HandleFunc("/scenes", s.listScenes).Methods(http.MethodGet)
	v1.HandleFunc("/scenes/scene_id:{uuid}/activate", s.activateScene).Methods(http.MethodPut)
	v1.HandleFunc("/color", s.validateColor).Methods(http.MethodGet)

	return middlewares.NewCors(middlewares.DefaultCorsOptions, r)
}

func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := ioutil.ReadAll(r.Body)
		r.Body = ioutil.NopCloser(bytes.NewReader(body))

		s.mu.Lock()
		s.recorded = append(s.recorded, Recorded{
			Method: r.Method,
			Path:   r.URL.RequestURI(),
			Header: r.Header.Clone(),
			Body:   body,
		})
		s.mu.Unlock()

		next.ServeHTTP(w, r)
	})
}

func (s *Server) authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer "+s.token {
			sendError(w, r, http.StatusUnauthorized, "Invalid token")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) canned(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		if len(s.replies) == 0 {
			s.mu.Unlock()
			next.ServeHTTP(w, r)
			return
		}
		reply := s.replies[0]
		s.replies = s.replies[1:]
		s.mu.Unlock()

		for k, v := range reply.Header {
			w.Header().Set(k, v)
		}
		sendJSON(w, r, reply.Status, reply.Body)
	})
}

// matchSelector returns the indexes of the lights a selector names.
// Zones are accepted and ignored; random picks the first match.
func (s *Server) matchSelector(raw string) ([]int, error) {
	text, random := raw, false
	if strings.HasSuffix(text, ":random") {
		text, random = strings.TrimSuffix(text, ":random"), true
	}
	if i := strings.IndexByte(text, '|'); i >= 0 {
		text = text[:i]
	}

	sel, err := lifx.ParseSelector(text)
	if err != nil {
		return nil, err
	}

	var matched []int
	for i, l := range s.lights {
		if lightMatches(l, sel) {
			matched = append(matched, i)
		}
	}

	if random && len(matched) > 1 {
		matched = matched[:1]
	}
	return matched, nil
}

func lightMatches(l lifx.Light, sel lifx.Selector) bool {
	switch sel.Kind {
	case lifx.SelectorAll:
		return true
	case lifx.SelectorLabel:
		return l.Label == sel.Value
	case lifx.SelectorID:
		return l.ID == sel.Value
	case lifx.SelectorGroupID:
		return l.Group.ID == sel.Value
	case lifx.SelectorGroup:
		return l.Group.Name == sel.Value
	case lifx.SelectorLocationID:
		return l.Location.ID == sel.Value
	case lifx.SelectorLocation:
		return l.Location.Name == sel.Value
	}

	return false
}

// selected resolves the {selector} route variable, writing the error reply
// itself when that fails
func (s *Server) selected(w http.ResponseWriter, r *http.Request) ([]int, bool) {
	raw, err := pathVar(r, "selector")
	if err != nil {
		sendError(w, r, http.StatusBadRequest, "bad selector: %s", err)
		return nil, false
	}

	matched, err := s.matchSelector(raw)
	if err != nil {
		sendError(w, r, http.StatusUnprocessableEntity, "%s", err)
		return nil, false
	}
	if len(matched) == 0 {
		sendError(w, r, http.StatusNotFound, "Could not find light with selector '%s'", raw)
		return nil, false
	}

	return matched, true
}

type resultBody struct {
	ID     string            `json:"id"`
	Label  string            `json:"label"`
	Status lifx.Reachability `json:"status"`
}

type resultsBody struct {
	Results []resultBody `json:"results"`
}

func (s *Server) results(matched []int) resultsBody {
	out := resultsBody{Results: []resultBody{}}
	for _, i := range matched {
		status := lifx.Reachable
		if !s.lights[i].Connected {
			status = lifx.Offline
		}
		out.Results = append(out.Results, resultBody{ID: s.lights[i].ID, Label: s.lights[i].Label, Status: status})
	}
	return out
}

// DemoLights is the light set used by serve-fake
func DemoLights() []lifx.Light {
	kitchen := lifx.Ref{ID: uuid.New().String(), Name: "Kitchen"}
	lounge := lifx.Ref{ID: uuid.New().String(), Name: "Living Room"}
	home := lifx.Ref{ID: uuid.New().String(), Name: "Home"}
	now := strfmt.DateTime(time.Now().UTC())

	return []lifx.Light{
		demoLight("d073d5000001", "Pendant", kitchen, home, 27, now),
		demoLight("d073d5000002", "Strip", lounge, home, 32, now),
		demoLight("d073d5000003", "Lamp", lounge, home, 29, now),
	}
}

func demoLight(id, label string, group, location lifx.Ref, productID uint32, seen strfmt.DateTime) lifx.Light {
	l := lifx.Light{
		ID:         id,
		UUID:       uuid.New().String(),
		Label:      label,
		Connected:  true,
		Power:      lifx.PowerOff,
		Color:      lifx.HSBK{Hue: 0, Saturation: 0, Kelvin: 3500},
		Brightness: 1,
		Group:      group,
		Location:   location,
		LastSeen:   seen,
	}

	if p, ok := lifx.LookupProduct(1, productID); ok {
		l.Product = lifx.ProductInfo{
			Name:      p.Name,
			Company:   "LIFX",
			VendorID:  p.VendorID,
			ProductID: p.ProductID,
			Capabilities: lifx.Capabilities{
				HasColor:             p.Color,
				HasVariableColorTemp: true,
				HasIR:                p.Infrared,
				HasMultizone:         p.Multizone,
				MinKelvin:            lifx.MinKelvin,
				MaxKelvin:            lifx.MaxKelvin,
			},
		}
	}

	return l
}

// DemoScene is a scene over every light in lights
func DemoScene(name string, lights []lifx.Light) lifx.Scene {
	sc := lifx.Scene{
		UUID:      uuid.New().String(),
		Name:      name,
		CreatedAt: time.Now().Unix(),
		UpdatedAt: time.Now().Unix(),
	}

	on := lifx.PowerOn
	half := 0.5
	for _, l := range lights {
		sc.States = append(sc.States, lifx.SceneState{
			Selector:   l.Selector().String(),
			Power:      &on,
			Brightness: &half,
		})
	}

	return sc
}
