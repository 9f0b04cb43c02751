package api_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/okian/starboard/internal/adapters/http/api"
	"github.com/okian/starboard/internal/adapters/render"
	repository "github.com/okian/starboard/internal/adapters/repository"
	service "github.com/okian/starboard/internal/app"
	"github.com/okian/starboard/internal/domain/model"
	"github.com/okian/starboard/internal/domain/types"
	. "github.com/smartystreets/goconvey/convey"
)

// Mock implementations for testing
type mockLeaderboard struct {
	topN    []types.Entry
	rank    types.Entry
	rankErr error
	topNErr error

	mu       sync.Mutex
	lastName string
}

func (m *mockLeaderboard) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	if m.topNErr != nil {
		return nil, m.topNErr
	}
	if n > len(m.topN) {
		return m.topN, nil
	}
	return m.topN[:n], nil
}

func (m *mockLeaderboard) Rank(ctx context.Context, name string) (types.Entry, error) {
	m.mu.Lock()
	m.lastName = name
	m.mu.Unlock()
	if m.rankErr != nil {
		return types.Entry{}, m.rankErr
	}
	return m.rank, nil
}

type mockRun struct {
	report  render.Report
	records []model.CompletionRecord
	err     error
}

func (m *mockRun) Report(ctx context.Context) (render.Report, error) {
	if m.err != nil {
		return render.Report{}, m.err
	}
	return m.report, nil
}

func (m *mockRun) Records(ctx context.Context) ([]model.CompletionRecord, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.records, nil
}

type mockStatsProvider struct {
	stats map[string]interface{}
}

func (m *mockStatsProvider) GetStats() map[string]interface{} {
	return m.stats
}

// Mock dependencies that implements the Dependencies interface
type mockDependencies struct {
	*mockRun
	lb *mockLeaderboard
}

func (m *mockDependencies) TopN(ctx context.Context, n int) ([]types.Entry, error) {
	return m.lb.TopN(ctx, n)
}

func (m *mockDependencies) Rank(ctx context.Context, name string) (types.Entry, error) {
	return m.lb.Rank(ctx, name)
}

func sampleRun() *mockRun {
	at := func(day, hour int) time.Time { return time.Date(2024, time.December, day, hour, 0, 0, 0, time.UTC) }
	return &mockRun{
		report: render.Report{
			Title: "Advent of Code 2024 Progress",
			Meta:  render.Meta{RunID: "run-1", Location: "UTC"},
			Panels: []render.Panel{
				{ID: render.PanelProgress, Kind: render.KindLine, Title: "Star Collection Progress Over Time"},
				{ID: render.PanelDayTotals, Kind: render.KindBar, Title: "Total Stars Collected per Day"},
			},
		},
		records: []model.CompletionRecord{
			{MemberID: "1", Name: "ada", Day: 1, Star: 1, Timestamp: at(1, 6), StarsTotal: 3, LocalScore: 50},
			{MemberID: "1", Name: "ada", Day: 1, Star: 2, Timestamp: at(1, 7), StarsTotal: 3, LocalScore: 50},
			{MemberID: "1", Name: "ada", Day: 2, Star: 1, Timestamp: at(3, 3), StarsTotal: 3, LocalScore: 50},
			{MemberID: "2", Name: "Participant 2", Day: 1, Star: 1, Timestamp: at(1, 8), StarsTotal: 1, LocalScore: 12},
		},
	}
}

func TestServer_Register(t *testing.T) {
	Convey("Given a new API server", t, func() {
		deps := &mockDependencies{
			mockRun: sampleRun(),
			lb:      &mockLeaderboard{topN: []types.Entry{{Rank: 1, Name: "ada", Score: 50, Stars: 3}}},
		}
		statsProvider := &mockStatsProvider{stats: map[string]interface{}{"started": true}}
		server := api.NewServer(deps, statsProvider, 100)
		mux := http.NewServeMux()

		Convey("When registering routes", func() {
			server.Register(context.Background(), mux)

			Convey("Then all expected routes should be registered", func() {
				So(mux, ShouldNotBeNil)
			})

			Convey("And health endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/healthz", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And stats endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/stats", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And report endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/report", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And records endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/records", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And leaderboard endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/leaderboard?limit=1", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And rank endpoint should be accessible", func() {
				req := httptest.NewRequest("GET", "/rank/ada", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
			})

			Convey("And unknown paths should not be served", func() {
				req := httptest.NewRequest("GET", "/unknown", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})

			Convey("And dashboard endpoint should serve HTML with refresh control", func() {
				req := httptest.NewRequest("GET", "/dashboard", nil)
				w := httptest.NewRecorder()
				mux.ServeHTTP(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				body := w.Body.String()
				So(body, ShouldContainSubstring, "id=\"refresh\"")
				So(body, ShouldContainSubstring, "fetch('/report')")
			})
		})
	})
}

func TestReportHandler_HandleGetReport(t *testing.T) {
	Convey("Given a report handler", t, func() {
		run := sampleRun()
		handler := api.NewReportHandler(run)

		Convey("When requesting the full report", func() {
			req := httptest.NewRequest("GET", "/report", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should return the render description", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")

				var response render.Report
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.Title, ShouldEqual, "Advent of Code 2024 Progress")
				So(response.Meta.RunID, ShouldEqual, "run-1")
				So(len(response.Panels), ShouldEqual, 2)
			})
		})

		Convey("When requesting a single panel", func() {
			req := httptest.NewRequest("GET", "/report?panel=day_totals", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then only that panel is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				var response render.Panel
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response.ID, ShouldEqual, render.PanelDayTotals)
				So(response.Kind, ShouldEqual, render.KindBar)
			})
		})

		Convey("When requesting an unknown panel", func() {
			req := httptest.NewRequest("GET", "/report?panel=pie", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When no run has been published", func() {
			run.err = service.ErrNotStarted
			req := httptest.NewRequest("GET", "/report", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should return service unavailable", func() {
				So(w.Code, ShouldEqual, http.StatusServiceUnavailable)
				var response map[string]string
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response["code"], ShouldEqual, "not_ready")
			})
		})

		Convey("When handling a non-GET request", func() {
			req := httptest.NewRequest("POST", "/report", nil)
			w := httptest.NewRecorder()
			handler.HandleGetReport(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})
	})
}

func TestRecordsHandler_HandleGetRecords(t *testing.T) {
	Convey("Given a records handler", t, func() {
		run := sampleRun()
		handler := api.NewRecordsHandler(run)

		decode := func(w *httptest.ResponseRecorder) []model.CompletionRecord {
			var response []model.CompletionRecord
			So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
			return response
		}

		Convey("When listing every record", func() {
			req := httptest.NewRequest("GET", "/records", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRecords(w, req)

			Convey("Then all records are returned in order", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				response := decode(w)
				So(len(response), ShouldEqual, 4)
				So(response[0].Name, ShouldEqual, "ada")
				So(response[0].Timestamp.Equal(run.records[0].Timestamp), ShouldBeTrue)
				So(response[3].LocalScore, ShouldEqual, 12)
			})
		})

		Convey("When filtering by name and day", func() {
			req := httptest.NewRequest("GET", "/records?name=ada&day=1", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRecords(w, req)

			Convey("Then only matching records are returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				response := decode(w)
				So(len(response), ShouldEqual, 2)
				for _, r := range response {
					So(r.Name, ShouldEqual, "ada")
					So(r.Day, ShouldEqual, 1)
				}
			})
		})

		Convey("When filtering by a name with spaces", func() {
			req := httptest.NewRequest("GET", "/records?name=Participant+2", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRecords(w, req)

			Convey("Then the name is matched after decoding", func() {
				response := decode(w)
				So(len(response), ShouldEqual, 1)
				So(response[0].MemberID, ShouldEqual, "2")
			})
		})

		Convey("When nothing matches", func() {
			req := httptest.NewRequest("GET", "/records?day=25", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRecords(w, req)

			Convey("Then an empty list is returned", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldStartWith, "[]")
			})
		})

		Convey("When the day filter is invalid", func() {
			req := httptest.NewRequest("GET", "/records?day=zero", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRecords(w, req)

			Convey("Then it should return 400 Bad Request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})
	})
}

func TestLeaderboardHandler_HandleGetLeaderboard(t *testing.T) {
	Convey("Given a leaderboard handler", t, func() {
		mockLB := &mockLeaderboard{
			topN: []types.Entry{
				{Rank: 1, Name: "ada", Score: 100, Stars: 12},
				{Rank: 2, Name: "bob", Score: 95, Stars: 11},
				{Rank: 3, Name: "Anonymous (7)", Score: 90, Stars: 10},
			},
		}
		deps := &mockDependencies{
			mockRun: sampleRun(),
			lb:      mockLB,
		}
		handler := api.NewLeaderboardHandler(deps, 100)

		Convey("When requesting top N entries", func() {
			req := httptest.NewRequest("GET", "/leaderboard?limit=2", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return the top N entries", func() {
				handler.HandleGetLeaderboard(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response []types.Entry
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(len(response), ShouldEqual, 2)
				So(response[0].Name, ShouldEqual, "ada")
				So(response[1].Name, ShouldEqual, "bob")
			})
		})

		Convey("When no limit is specified", func() {
			req := httptest.NewRequest("GET", "/leaderboard", nil)
			w := httptest.NewRecorder()

			handler.HandleGetLeaderboard(w, req)

			Convey("Then it should return 400 Bad Request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When the limit exceeds the maximum", func() {
			req := httptest.NewRequest("GET", "/leaderboard?limit=101", nil)
			w := httptest.NewRecorder()

			handler.HandleGetLeaderboard(w, req)

			Convey("Then it should return 400 with a limit code", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
				var response map[string]string
				So(json.NewDecoder(w.Body).Decode(&response), ShouldBeNil)
				So(response["code"], ShouldEqual, "limit_exceeded")
			})
		})

		Convey("When leaderboard returns an error", func() {
			mockLB.topNErr = fmt.Errorf("snapshot error")
			req := httptest.NewRequest("GET", "/leaderboard?limit=10", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return internal server error", func() {
				handler.HandleGetLeaderboard(w, req)
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestRankHandler_HandleGetRank(t *testing.T) {
	Convey("Given a rank handler", t, func() {
		mockLB := &mockLeaderboard{
			rank: types.Entry{Rank: 5, Name: "Participant 5", Score: 85, Stars: 9},
		}
		handler := api.NewRankHandler(mockLB)

		Convey("When requesting rank for an existing participant", func() {
			req := httptest.NewRequest("GET", "/rank/Participant%205", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return the rank information", func() {
				handler.HandleGetRank(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Header().Get("Content-Type"), ShouldContainSubstring, "application/json")
				So(mockLB.lastName, ShouldEqual, "Participant 5")

				var response types.Entry
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response.Name, ShouldEqual, "Participant 5")
				So(response.Rank, ShouldEqual, 5)
				So(response.Score, ShouldEqual, 85)
			})
		})

		Convey("When the name contains an escaped slash", func() {
			req := httptest.NewRequest("GET", "/rank/a%2Fb", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then it is passed through unescaped", func() {
				So(w.Code, ShouldEqual, http.StatusOK)
				So(mockLB.lastName, ShouldEqual, "a/b")
			})
		})

		Convey("When the path has extra segments", func() {
			req := httptest.NewRequest("GET", "/rank/a/b", nil)
			w := httptest.NewRecorder()
			handler.HandleGetRank(w, req)

			Convey("Then it should return 400 Bad Request", func() {
				So(w.Code, ShouldEqual, http.StatusBadRequest)
			})
		})

		Convey("When requesting rank for a non-existent participant", func() {
			req := httptest.NewRequest("GET", "/rank/nobody", nil)
			w := httptest.NewRecorder()

			// Mock the error response
			mockLB.rankErr = repository.ErrNotFound

			handler.HandleGetRank(w, req)

			Convey("Then it should return not found status", func() {
				So(w.Code, ShouldEqual, http.StatusNotFound)
			})
		})

		Convey("When leaderboard returns other error", func() {
			req := httptest.NewRequest("GET", "/rank/ada", nil)
			w := httptest.NewRecorder()

			// Mock the error response
			mockLB.rankErr = fmt.Errorf("snapshot error")

			handler.HandleGetRank(w, req)

			Convey("Then it should return internal server error", func() {
				So(w.Code, ShouldEqual, http.StatusInternalServerError)
			})
		})
	})
}

func TestHealthHandler_HandleHealth(t *testing.T) {
	Convey("Given a health handler", t, func() {
		handler := api.NewHealthHandler()

		Convey("When handling health check request", func() {
			req := httptest.NewRequest("GET", "/healthz", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return OK status", func() {
				handler.HandleHealth(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)
				So(w.Body.String(), ShouldContainSubstring, "starboard_report_runs_total")
			})
		})
	})
}

func TestStatsHandler_HandleStats(t *testing.T) {
	Convey("Given a stats handler", t, func() {
		mockStats := &mockStatsProvider{
			stats: map[string]interface{}{
				"participants": 150,
				"completions":  1000,
			},
		}
		handler := api.NewStatsHandler(mockStats)

		Convey("When handling stats request", func() {
			req := httptest.NewRequest("GET", "/stats", nil)
			w := httptest.NewRecorder()

			Convey("Then it should return stats", func() {
				handler.HandleStats(w, req)
				So(w.Code, ShouldEqual, http.StatusOK)

				var response map[string]interface{}
				err := json.NewDecoder(w.Body).Decode(&response)
				So(err, ShouldBeNil)
				So(response["completions"], ShouldEqual, float64(1000))
				So(response["participants"], ShouldEqual, float64(150))
			})
		})
	})
}
