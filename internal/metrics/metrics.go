// Package metrics exposes process-wide gameplay counters.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	RoomsLive = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "quizwire_rooms_live",
		Help: "Number of rooms currently registered.",
	})
	GamesStarted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizwire_games_started_total",
		Help: "Number of games started.",
	})
	GamesFinished = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizwire_games_finished_total",
		Help: "Number of games played to completion.",
	})
	AnswersAccepted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "quizwire_answers_accepted_total",
		Help: "Number of answer submissions accepted.",
	})
)

func Handler() http.Handler {
	return promhttp.Handler()
}
