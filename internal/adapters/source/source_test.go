package source_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/okian/starboard/internal/adapters/source"
	"github.com/okian/starboard/internal/domain/flatten"
	"github.com/smartystreets/goconvey/convey"
)

const validDoc = `{"event":"2024","owner_id":1,"members":{"1":{"id":1,"name":"ada","stars":1,"local_score":3,
"completion_day_level":{"1":{"1":{"get_star_ts":1733032800,"star_index":12}}}}}}`

func TestDecode(t *testing.T) {
	convey.Convey("Given raw leaderboard input", t, func() {
		convey.Convey("When the document is well formed", func() {
			doc, err := source.Decode(strings.NewReader(validDoc))

			convey.Convey("Then members and metadata are decoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(doc.Event, convey.ShouldEqual, "2024")
				convey.So(doc.Members, convey.ShouldContainKey, "1")
				convey.So(*doc.Members["1"].Name, convey.ShouldEqual, "ada")
				convey.So(string(doc.Members["1"].CompletionDayLevel["1"]["1"].GetStarTS), convey.ShouldEqual, "1733032800")
			})
		})

		convey.Convey("When ids and timestamps are sent as strings", func() {
			doc, err := source.Decode(strings.NewReader(`{"event":"2019","owner_id":"7","members":{"7":{"id":"7",
"name":"ada","stars":1,"local_score":4,"last_star_ts":"1575183600",
"completion_day_level":{"1":{"1":{"get_star_ts":"1575183600"}}}}}}`))

			convey.Convey("Then the document decodes and the values stay readable", func() {
				convey.So(err, convey.ShouldBeNil)
				owner, oerr := doc.OwnerID.Int64()
				convey.So(oerr, convey.ShouldBeNil)
				convey.So(owner, convey.ShouldEqual, 7)
				last, lerr := doc.Members["7"].LastStarTS.Epoch()
				convey.So(lerr, convey.ShouldBeNil)
				convey.So(last.Unix(), convey.ShouldEqual, 1575183600)
			})
		})

		convey.Convey("When the top-level value is an array", func() {
			_, err := source.Decode(strings.NewReader(`[{"members":{}}]`))

			convey.Convey("Then it is a validation error", func() {
				convey.So(errors.Is(err, flatten.ErrValidation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When a field has the wrong JSON type", func() {
			_, err := source.Decode(strings.NewReader(`{"members":{"1":{"stars":"three"}}}`))

			convey.Convey("Then it is a validation error", func() {
				convey.So(errors.Is(err, flatten.ErrValidation), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the JSON is broken", func() {
			_, err := source.Decode(strings.NewReader(`{"members": {`))

			convey.Convey("Then it is a decode error", func() {
				convey.So(errors.Is(err, source.ErrDecode), convey.ShouldBeTrue)
				convey.So(errors.Is(err, flatten.ErrValidation), convey.ShouldBeFalse)
			})
		})

		convey.Convey("When the input is blank", func() {
			_, err := source.Decode(strings.NewReader("  \n"))

			convey.Convey("Then it is a decode error", func() {
				convey.So(errors.Is(err, source.ErrDecode), convey.ShouldBeTrue)
			})
		})
	})
}

func TestLoad(t *testing.T) {
	convey.Convey("Given a document on disk", t, func() {
		ctx := context.Background()
		path := filepath.Join(t.TempDir(), "leaderboard.json")
		convey.So(os.WriteFile(path, []byte(validDoc), 0o600), convey.ShouldBeNil)

		convey.Convey("When loading it", func() {
			doc, err := source.Load(ctx, path)

			convey.Convey("Then it is decoded", func() {
				convey.So(err, convey.ShouldBeNil)
				convey.So(len(doc.Members), convey.ShouldEqual, 1)
			})
		})

		convey.Convey("When the file does not exist", func() {
			_, err := source.Load(ctx, filepath.Join(t.TempDir(), "missing.json"))

			convey.Convey("Then it is a read error", func() {
				convey.So(errors.Is(err, source.ErrRead), convey.ShouldBeTrue)
				convey.So(errors.Is(err, os.ErrNotExist), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the context is already cancelled", func() {
			cctx, cancel := context.WithCancel(ctx)
			cancel()
			_, err := source.Load(cctx, path)

			convey.Convey("Then nothing is read", func() {
				convey.So(errors.Is(err, context.Canceled), convey.ShouldBeTrue)
			})
		})

		convey.Convey("When the file is malformed", func() {
			bad := filepath.Join(t.TempDir(), "bad.json")
			convey.So(os.WriteFile(bad, []byte(`"members"`), 0o600), convey.ShouldBeNil)
			_, err := source.Load(ctx, bad)

			convey.Convey("Then the error names the file", func() {
				convey.So(err.Error(), convey.ShouldContainSubstring, bad)
				convey.So(errors.Is(err, flatten.ErrValidation), convey.ShouldBeTrue)
			})
		})
	})
}
