package cmd

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/jsphweid/tieline/model"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

const defaultBpm = 120

func init() {
	serveCmd.Flags().Int("port", 0, "port to listen on (default from PORT)")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serves the line store over HTTP",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		port, _ := cmd.Flags().GetInt("port")
		if port == 0 {
			port = cfg.Port
		}
		return serve(cmd.Context(), port)
	},
}

func serve(ctx context.Context, port int) error {
	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", port),
		Handler:           NewRouter(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt)
	defer stop()
	go func() {
		<-ctx.Done()
		shutdown, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdown); err != nil {
			logrus.WithError(err).Error("shutdown")
		}
	}()

	logrus.WithField("addr", srv.Addr).Info("listening")
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func NewRouter() http.Handler {
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/lines", HandleLines).Methods("GET")
	router.HandleFunc("/lines/{name}", HandleGetLine).Methods("GET")
	router.HandleFunc("/lines/{name}", HandleAddLine).Methods("POST")
	router.HandleFunc("/lines/{name}", HandleDropLine).Methods("DELETE")
	router.HandleFunc("/lines/{name}/playable", HandlePlayable).Methods("GET")
	router.HandleFunc("/decompose", HandleDecompose).Methods("POST")

	c := cors.New(cors.Options{
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodDelete},
	})
	return c.Handler(router)
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, model.ErrLineDoesNotExist):
		return http.StatusNotFound
	case errors.Is(err, model.ErrLineExists):
		return http.StatusConflict
	case errors.Is(err, model.ErrInvalidNote),
		errors.Is(err, model.ErrUnrepresentableDuration),
		errors.Is(err, model.ErrEmptyTieChain):
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, status int, err error) {
	log := logrus.WithFields(logrus.Fields{"method": r.Method, "path": r.URL.Path, "status": status})
	if status >= 500 {
		log.WithError(err).Error("request failed")
	} else {
		log.WithError(err).Debug("request rejected")
	}
	writeJSON(w, status, model.ErrorResponse{Error: err.Error()})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logrus.WithError(err).Warn("could not encode response")
	}
}

func HandleLines(w http.ResponseWriter, r *http.Request) {
	lines, err := sess.Store().Lines(r.Context())
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, lines)
}

func HandleGetLine(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	l, err := sess.Store().FindLine(r.Context(), name)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	notes, err := sess.Store().Notes(r.Context(), name)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, model.LineResponse{Line: l, Notes: notes})
}

func HandleAddLine(w http.ResponseWriter, r *http.Request) {
	name := mux.Vars(r)["name"]
	var input model.AddLineRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "could not unmarshal request body"))
		return
	}

	header := model.Header{Composer: input.Composer, Created: time.Now().UTC()}
	l, err := sess.Store().AddLine(r.Context(), name, header, input.Notes)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	logrus.WithFields(logrus.Fields{"line": name, "notes": l.NumNotes}).Info("line added")
	writeJSON(w, http.StatusCreated, model.LineResponse{Line: l, Notes: input.Notes})
}

func HandleDropLine(w http.ResponseWriter, r *http.Request) {
	if err := sess.DropLine(r.Context(), mux.Vars(r)["name"]); err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func HandlePlayable(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bpm := cfg.Bpm
	if bpm <= 0 {
		bpm = defaultBpm
	}
	if s := q.Get("bpm"); s != "" {
		v, err := strconv.ParseFloat(s, 64)
		if err != nil || v <= 0 {
			writeError(w, r, http.StatusBadRequest, errors.Errorf("bpm %q must be a positive number", s))
			return
		}
		bpm = v
	}
	var excerpt int
	if s := q.Get("excerpt"); s != "" {
		v, err := strconv.Atoi(s)
		if err != nil {
			writeError(w, r, http.StatusBadRequest, errors.Errorf("excerpt %q must be a number", s))
			return
		}
		excerpt = v
	}

	timed, err := sess.PlayableLine(r.Context(), mux.Vars(r)["name"], bpm, excerpt)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	res := model.PlayableResponse{TicksPerBeat: sess.TicksPerBeat(), Bpm: bpm, Notes: make([]model.PlayableResult, 0, len(timed))}
	for _, n := range timed {
		res.Notes = append(res.Notes, model.PlayableResult{
			Pitch:     n.Pitch,
			Ticks:     n.Duration.Reduce().String(),
			StartTime: n.Start,
			EndTime:   n.End,
		})
	}
	writeJSON(w, http.StatusOK, res)
}

func HandleDecompose(w http.ResponseWriter, r *http.Request) {
	var input model.DecomposeRequestBody
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		writeError(w, r, http.StatusBadRequest, errors.Wrap(err, "could not unmarshal request body"))
		return
	}
	res, err := decompose(input)
	if err != nil {
		writeError(w, r, statusOf(err), err)
		return
	}
	writeJSON(w, http.StatusOK, res)
}
