// Package metrics はPrometheusメトリクスの収集と公開を提供する。
package metrics

import (
	"net/http"
	"strconv"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Recorder はメトリクス収集のインターフェース。
// サービス層とハンドラーから利用する。
type Recorder interface {
	RecordViewIncrement()
	RecordSubscribe(outcome string)
	RecordStorageFallback(store string)
	RecordCorpusLoad(posts int, skipped int)
	RecordHTTPStatus(statusCode int)
}

// Collector はPrometheusメトリクスを収集する実装。
type Collector struct {
	viewIncrements  prometheus.Counter
	subscribes      *prometheus.CounterVec
	storageFallback *prometheus.CounterVec
	corpusPosts     prometheus.Gauge
	corpusSkipped   prometheus.Gauge
	httpStatus      *prometheus.CounterVec
}

// NewCollector は新しいCollectorを生成し、指定されたレジストリにメトリクスを登録する。
func NewCollector(reg prometheus.Registerer) *Collector {
	c := &Collector{
		viewIncrements: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "ashokworld_view_increments_total",
			Help: "記事閲覧数インクリメントの合計数",
		}),
		subscribes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ashokworld_subscribes_total",
			Help: "購読リクエストの結果別合計数",
		}, []string{"outcome"}),
		storageFallback: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ashokworld_storage_fallback_total",
			Help: "永続ストア障害によるインメモリフォールバック発動数",
		}, []string{"store"}),
		corpusPosts: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ashokworld_corpus_posts",
			Help: "コーパス内の公開記事数",
		}),
		corpusSkipped: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "ashokworld_corpus_skipped_files",
			Help: "構文不正・検証失敗でスキップされたコンテンツファイル数",
		}),
		httpStatus: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "ashokworld_http_status_total",
			Help: "HTTPステータスコード別のレスポンス数",
		}, []string{"status_code"}),
	}

	reg.MustRegister(
		c.viewIncrements,
		c.subscribes,
		c.storageFallback,
		c.corpusPosts,
		c.corpusSkipped,
		c.httpStatus,
	)

	return c
}

// RecordViewIncrement は閲覧数インクリメントを記録する。
func (c *Collector) RecordViewIncrement() {
	c.viewIncrements.Inc()
}

// RecordSubscribe は購読リクエストの結果を記録する。
// outcomeは success、duplicate、invalid のいずれか。
func (c *Collector) RecordSubscribe(outcome string) {
	c.subscribes.WithLabelValues(outcome).Inc()
}

// RecordStorageFallback はインメモリフォールバックの発動を記録する。
// storeは views、subscribers、audit のいずれか。
func (c *Collector) RecordStorageFallback(store string) {
	c.storageFallback.WithLabelValues(store).Inc()
}

// RecordCorpusLoad はコーパス構築の結果を記録する。
func (c *Collector) RecordCorpusLoad(posts int, skipped int) {
	c.corpusPosts.Set(float64(posts))
	c.corpusSkipped.Set(float64(skipped))
}

// RecordHTTPStatus はHTTPステータスコードを記録する。
func (c *Collector) RecordHTTPStatus(statusCode int) {
	c.httpStatus.WithLabelValues(strconv.Itoa(statusCode)).Inc()
}

// Handler はPrometheusスクレイプ用のHTTPハンドラーを返す。
func Handler(gatherer prometheus.Gatherer) http.Handler {
	return promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{})
}

// SetupMetricsRoute は/metricsエンドポイントを提供するHTTPハンドラーを返す。
func SetupMetricsRoute(gatherer prometheus.Gatherer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/metrics", Handler(gatherer))
	return mux
}
