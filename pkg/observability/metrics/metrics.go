package metrics

import (
	"fmt"
	"net/http"
	"sync/atomic"
)

var (
	kioskSubmissions    atomic.Int64
	mobileSubmissions   atomic.Int64
	rejectedSubmissions atomic.Int64
	tokensIssued        atomic.Int64
	tokensConsumed      atomic.Int64
	verifications       atomic.Int64
	statsCacheHits      atomic.Int64
	statsCacheMisses    atomic.Int64
)

func Init() {}

func IncKioskSubmissions()    { kioskSubmissions.Add(1) }
func IncMobileSubmissions()   { mobileSubmissions.Add(1) }
func IncRejectedSubmissions() { rejectedSubmissions.Add(1) }
func IncTokensIssued()        { tokensIssued.Add(1) }
func IncTokensConsumed()      { tokensConsumed.Add(1) }
func IncVerifications()       { verifications.Add(1) }
func IncStatsCacheHits()      { statsCacheHits.Add(1) }
func IncStatsCacheMisses()    { statsCacheMisses.Add(1) }

func WritePrometheus(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "text/plain; version=0.0.4")
	fmt.Fprintf(w, "# HELP civicpulse_survey_kiosk_submissions_total Kiosk survey submissions accepted since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_survey_kiosk_submissions_total counter\n")
	fmt.Fprintf(w, "civicpulse_survey_kiosk_submissions_total %d\n", kioskSubmissions.Load())

	fmt.Fprintf(w, "# HELP civicpulse_survey_mobile_submissions_total Mobile survey submissions accepted since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_survey_mobile_submissions_total counter\n")
	fmt.Fprintf(w, "civicpulse_survey_mobile_submissions_total %d\n", mobileSubmissions.Load())

	fmt.Fprintf(w, "# HELP civicpulse_survey_rejected_submissions_total Submissions rejected by validation since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_survey_rejected_submissions_total counter\n")
	fmt.Fprintf(w, "civicpulse_survey_rejected_submissions_total %d\n", rejectedSubmissions.Load())

	fmt.Fprintf(w, "# HELP civicpulse_link_tokens_issued_total Linking tokens minted since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_link_tokens_issued_total counter\n")
	fmt.Fprintf(w, "civicpulse_link_tokens_issued_total %d\n", tokensIssued.Load())

	fmt.Fprintf(w, "# HELP civicpulse_link_tokens_consumed_total Linking tokens redeemed since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_link_tokens_consumed_total counter\n")
	fmt.Fprintf(w, "civicpulse_link_tokens_consumed_total %d\n", tokensConsumed.Load())

	fmt.Fprintf(w, "# HELP civicpulse_link_token_verifications_total Token verification requests since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_link_token_verifications_total counter\n")
	fmt.Fprintf(w, "civicpulse_link_token_verifications_total %d\n", verifications.Load())

	fmt.Fprintf(w, "# HELP civicpulse_stats_cache_hits_total Dashboard summary cache hits since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_stats_cache_hits_total counter\n")
	fmt.Fprintf(w, "civicpulse_stats_cache_hits_total %d\n", statsCacheHits.Load())

	fmt.Fprintf(w, "# HELP civicpulse_stats_cache_misses_total Dashboard summary cache misses since start.\n")
	fmt.Fprintf(w, "# TYPE civicpulse_stats_cache_misses_total counter\n")
	fmt.Fprintf(w, "civicpulse_stats_cache_misses_total %d\n", statsCacheMisses.Load())
}
