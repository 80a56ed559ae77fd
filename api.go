package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/pprof" // register handlers
	"regexp"
	"strconv"
	"time"

	"github.com/go-json-experiment/json"
	"github.com/go-json-experiment/json/jsontext"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/osmarks/autobotrobot/deleted"
)

func (robo *Robot) api(ctx context.Context, listen string, mux *http.ServeMux, metrics []prometheus.Collector) error {
	robo.routes(mux, metrics)
	l, err := net.Listen("tcp", listen)
	if err != nil {
		return fmt.Errorf("couldn't start API server: %w", err)
	}
	srv := http.Server{
		Handler:     mux,
		ReadTimeout: 5 * time.Second,
		BaseContext: func(l net.Listener) context.Context { return ctx },
	}
	go func() {
		slog.InfoContext(ctx, "HTTP API server", slog.Any("addr", l.Addr()))
		err := srv.Serve(l)
		if err == http.ErrServerClosed {
			return
		}
		slog.ErrorContext(ctx, "HTTP API server closed", slog.Any("err", err))
	}()
	<-ctx.Done()
	// The context is now done, so it is obviously the wrong choice for
	// managing the shutdown.
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(ctx)
}

// routes installs the API handlers.
func (robo *Robot) routes(mux *http.ServeMux, metrics []prometheus.Collector) {
	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(
		collectors.WithGoCollectorMemStatsMetricsDisabled(),
		collectors.WithGoCollectorRuntimeMetrics(
			collectors.GoRuntimeMetricsRule{
				Matcher: regexp.MustCompile(`^(/gc/heap/allocs:bytes|/gc/heap/goal:bytes|/memory/classes/total:bytes|/sched/gomaxprocs:threads|/sched/goroutines:goroutines|/sched/latencies:seconds)$`),
			},
		),
	))
	reg.MustRegister(metrics...)
	opts := promhttp.HandlerOpts{
		EnableOpenMetrics: true,
	}
	mux.Handle("GET /metrics", promhttp.HandlerFor(reg, opts))
	mux.HandleFunc("GET /debug/pprof/", pprof.Index)
	mux.HandleFunc("GET /debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("GET /debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("GET /debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("GET /debug/pprof/trace", pprof.Trace)
	mux.HandleFunc("GET /api/deleted", robo.apiRecent)
	mux.HandleFunc("POST /api/deleted", robo.apiImport)
}

func jsonerror(w http.ResponseWriter, status int, msg string) {
	v := struct {
		Error  string `json:"error"`
		Status int    `json:"status"`
	}{
		Error:  msg,
		Status: status,
	}
	b, err := json.Marshal(&v)
	if err != nil {
		panic(err)
	}
	w.WriteHeader(status)
	w.Write(b)
}

type apiItem struct {
	Text string `json:"text"`
	Time string `json:"time,omitzero"`
}

// apiRecent lists recent deletions.
// Query parameters are search, a substring filter, and n, the maximum number
// of items.
func (robo *Robot) apiRecent(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slog.With(slog.String("api", "recent"), slog.Any("trace", uuid.New()))
	log.InfoContext(ctx, "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	defer log.InfoContext(ctx, "done")
	w.Header().Set("Content-Type", "application/json")
	search := r.FormValue("search")
	n := listDefault
	if s := r.FormValue("n"); s != "" {
		var err error
		n, err = strconv.Atoi(s)
		if err != nil || n <= 0 || n > listMax {
			log.WarnContext(ctx, "bad request", slog.String("n", s), slog.Any("err", err))
			jsonerror(w, http.StatusBadRequest, "invalid page size")
			return
		}
	}
	items, err := robo.state.Deleted.Recent(ctx, n, search)
	if err != nil {
		log.ErrorContext(ctx, "couldn't list", slog.Any("err", err))
		jsonerror(w, http.StatusInternalServerError, err.Error())
		return
	}
	u := struct {
		Data   []apiItem `json:"data"`
		Status int       `json:"status"`
	}{
		Data:   make([]apiItem, len(items)),
		Status: http.StatusOK,
	}
	for i, v := range items {
		u.Data[i] = apiItem{Text: v.Text, Time: v.Time.UTC().Format(time.RFC3339Nano)}
	}
	b, err := json.Marshal(&u)
	if err != nil {
		panic(err)
	}
	if _, err := w.Write(b); err != nil {
		log.ErrorContext(ctx, "write response failed", slog.Any("err", err))
	}
}

const (
	listDefault = 100
	listMax     = 10000
)

// apiImport appends a stream of JSON items to the deletion log.
// Items without times are recorded at the current time.
func (robo *Robot) apiImport(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	log := slog.With(slog.String("api", "import"), slog.Any("trace", uuid.New()))
	log.InfoContext(ctx, "handle", slog.String("route", r.Pattern), slog.String("remote", r.RemoteAddr))
	defer log.InfoContext(ctx, "done")
	d := jsontext.NewDecoder(r.Body)
	var all error
	var v apiItem
	for {
		v = apiItem{}
		err := json.UnmarshalDecode(d, &v)
		switch err {
		case nil: // do nothing
		case io.EOF:
			// Done; transmit any append errors.
			if all != nil {
				jsonerror(w, http.StatusInternalServerError, all.Error())
				return
			}
			w.WriteHeader(http.StatusNoContent)
			return
		default:
			log.ErrorContext(ctx, "read item", slog.Any("err", err))
			jsonerror(w, http.StatusBadRequest, "item read failed")
			return
		}
		item := deleted.Item{Text: v.Text, Time: time.Now()}
		if v.Time != "" {
			t, err := time.Parse(time.RFC3339Nano, v.Time)
			if err != nil {
				all = errors.Join(all, err)
				continue
			}
			item.Time = t
		}
		if err := robo.state.Deleted.Append(ctx, item); err != nil {
			log.ErrorContext(ctx, "append failed", slog.String("text", item.Text), slog.Any("err", err))
			all = errors.Join(all, err)
			// continue on
		}
	}
}
