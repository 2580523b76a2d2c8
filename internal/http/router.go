package http

import (
	"net/http"
	"strings"
)

type RouterConfig struct {
	Occupations *OccupationHandler
	Rooms       *RoomHandler
	Occupancy   *OccupancyHandler
	Middleware  []func(http.Handler) http.Handler
}

func NewRouter(cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()

	if cfg.Occupations != nil {
		mux.HandleFunc("/occupations", func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				cfg.Occupations.List(w, r)
			case http.MethodPost:
				cfg.Occupations.Create(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPost)
			}
		})
		mux.HandleFunc("/occupations/check", func(w http.ResponseWriter, r *http.Request) {
			if r.Method != http.MethodPost {
				methodNotAllowed(w, http.MethodPost)
				return
			}
			cfg.Occupations.Check(w, r)
		})
		mux.HandleFunc("/occupations/", func(w http.ResponseWriter, r *http.Request) {
			id := strings.TrimPrefix(r.URL.Path, "/occupations/")
			if id == "" || strings.Contains(id, "/") {
				http.NotFound(w, r)
				return
			}
			ctx := ContextWithOccupationID(r.Context(), id)
			r = r.WithContext(ctx)
			switch r.Method {
			case http.MethodGet:
				cfg.Occupations.Get(w, r)
			case http.MethodDelete:
				cfg.Occupations.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodDelete)
			}
		})
	}

	if cfg.Rooms != nil || cfg.Occupancy != nil {
		if cfg.Rooms != nil {
			mux.HandleFunc("/rooms", func(w http.ResponseWriter, r *http.Request) {
				switch r.Method {
				case http.MethodGet:
					cfg.Rooms.List(w, r)
				case http.MethodPost:
					cfg.Rooms.Create(w, r)
				default:
					methodNotAllowed(w, http.MethodGet, http.MethodPost)
				}
			})
		}
		if cfg.Occupancy != nil {
			mux.HandleFunc("/rooms/occupied", func(w http.ResponseWriter, r *http.Request) {
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Occupancy.OccupiedRooms(w, r)
			})
		}
		mux.HandleFunc("/rooms/", func(w http.ResponseWriter, r *http.Request) {
			rest := strings.TrimPrefix(r.URL.Path, "/rooms/")
			if rest == "" {
				http.NotFound(w, r)
				return
			}

			if id, ok := strings.CutSuffix(rest, "/occupation"); ok && !strings.Contains(id, "/") {
				if cfg.Occupancy == nil || id == "" {
					http.NotFound(w, r)
					return
				}
				if r.Method != http.MethodGet {
					methodNotAllowed(w, http.MethodGet)
					return
				}
				cfg.Occupancy.RoomOccupation(w, r.WithContext(ContextWithRoomID(r.Context(), id)))
				return
			}

			if cfg.Rooms == nil || strings.Contains(rest, "/") {
				http.NotFound(w, r)
				return
			}
			r = r.WithContext(ContextWithRoomID(r.Context(), rest))
			switch r.Method {
			case http.MethodGet:
				cfg.Rooms.Get(w, r)
			case http.MethodPut:
				cfg.Rooms.Update(w, r)
			case http.MethodDelete:
				cfg.Rooms.Delete(w, r)
			default:
				methodNotAllowed(w, http.MethodGet, http.MethodPut, http.MethodDelete)
			}
		})
	}

	var handler http.Handler = mux
	for i := len(cfg.Middleware) - 1; i >= 0; i-- {
		if cfg.Middleware[i] != nil {
			handler = cfg.Middleware[i](handler)
		}
	}

	return handler
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	if len(allowed) > 0 {
		w.Header().Set("Allow", strings.Join(allowed, ", "))
	}
	http.Error(w, http.StatusText(http.StatusMethodNotAllowed), http.StatusMethodNotAllowed)
}
