package main

import (
	"bytes"
	_ "embed"
	"html"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/rs/cors"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/hlog"

	"github.com/tomz197/omw/internal/config"
	"github.com/tomz197/omw/internal/share"
)

//go:embed index.html
var htmlPage string

// newHandler builds the web companion: the landing page plus the share
// artifacts for a result.
func newHandler(cfg config.Config, logger zerolog.Logger) http.Handler {
	brand := cfg.Brand.Share()
	tiers := cfg.Game.Tiers()
	page := strings.NewReplacer(
		"{{.SSHHost}}", html.EscapeString(cfg.SSH.DisplayHost),
		"{{.SSHPort}}", html.EscapeString(sshPortFlag(cfg.SSH.Port)),
		"{{.Title}}", html.EscapeString(brand.Title),
		"{{.Handle}}", html.EscapeString(brand.Handle),
	).Replace(htmlPage)

	parseResult := func(w http.ResponseWriter, r *http.Request) (share.Result, bool) {
		latency, err := share.ParseLatency(r.URL.Query().Get("ms"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return share.Result{}, false
		}
		return share.Result{Latency: latency, Category: tiers.Classify(latency)}, true
	}

	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		_, _ = w.Write([]byte(page))
	})

	mux.HandleFunc("GET /card.png", func(w http.ResponseWriter, r *http.Request) {
		res, ok := parseResult(w, r)
		if !ok {
			return
		}
		var buf bytes.Buffer
		if err := share.RenderCard(&buf, res, brand); err != nil {
			hlog.FromRequest(r).Error().Err(err).Msg("render card")
			http.Error(w, "could not render card", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
		w.Header().Set("Content-Disposition", `inline; filename="`+share.CardFilename(res)+`"`)
		w.Header().Set("Cache-Control", "public, max-age=86400")
		_, _ = buf.WriteTo(w)
	})

	mux.HandleFunc("GET /share", func(w http.ResponseWriter, r *http.Request) {
		res, ok := parseResult(w, r)
		if !ok {
			return
		}
		text := share.PostText(res, cfg.PublicURL, brand)
		http.Redirect(w, r, share.IntentURL(text), http.StatusFound)
	})

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte("ok"))
	})

	c := cors.New(cors.Options{
		AllowedOrigins: cfg.Web.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodHead},
	})

	var h http.Handler = c.Handler(mux)
	h = hlog.AccessHandler(func(r *http.Request, status, size int, duration time.Duration) {
		hlog.FromRequest(r).Info().
			Str("method", r.Method).
			Stringer("url", r.URL).
			Int("status", status).
			Int("size", size).
			Dur("duration", duration).
			Msg("request")
	})(h)
	h = hlog.NewHandler(logger)(h)
	return h
}

// sshPortFlag renders the -p argument of the ssh command, empty for port 22.
func sshPortFlag(port string) string {
	if port == "" || port == "22" {
		return ""
	}
	return " -p " + port
}
