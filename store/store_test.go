package store

import (
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/cockroachdb/pebble/vfs"
	"github.com/jonboulle/clockwork"
	"github.com/offplay/offplay/constant"
	. "github.com/smartystreets/goconvey/convey"
)

func openMem(fs vfs.FS, clock clockwork.Clock) *Store {
	s, err := Open("db", &Options{FS: fs, Clock: clock})
	So(err, ShouldBeNil)
	return s
}

func TestRoundTrip(t *testing.T) {
	Convey("Given an empty store", t, func() {
		clock := clockwork.NewFakeClock()
		s := openMem(vfs.NewMem(), clock)
		defer s.Close()

		Convey("Put then Get returns an equal record", func() {
			rec := &Record{Name: "a.mp4", Blob: []byte{0, 1, 2, 3}, MIME: "video/mp4"}
			So(s.Put(rec), ShouldBeNil)

			got, err := s.Get("a.mp4")
			So(err, ShouldBeNil)
			So(got.IsPresent(), ShouldBeTrue)
			So(got.MustGet(), ShouldResemble, rec)
			So(got.MustGet().Size, ShouldEqual, 4)
			So(got.MustGet().PlaybackState, ShouldEqual, constant.StatePaused)
		})

		Convey("Get of a missing name is absent, not an error", func() {
			got, err := s.Get("missing.mp4")
			So(err, ShouldBeNil)
			So(got.IsAbsent(), ShouldBeTrue)
		})

		Convey("Put overwrites the previous record and payload", func() {
			So(s.Put(&Record{Name: "a.mp4", Blob: []byte("old")}), ShouldBeNil)
			So(s.UpdateMetadata("a.mp4", Metadata{LastPosition: 12, PlaybackState: constant.StatePlaying}), ShouldBeNil)
			So(s.Put(&Record{Name: "a.mp4", Blob: []byte("new")}), ShouldBeNil)

			got, _ := s.Get("a.mp4")
			So(string(got.MustGet().Blob), ShouldEqual, "new")
			So(got.MustGet().LastPosition, ShouldEqual, 0)
		})

		Convey("Created stays strictly increasing under a stopped clock", func() {
			a := &Record{Name: "a.mp4"}
			b := &Record{Name: "b.mp4"}
			So(s.Put(a), ShouldBeNil)
			So(s.Put(b), ShouldBeNil)
			So(b.Created, ShouldBeGreaterThan, a.Created)
		})

		Convey("An explicit Created is preserved and advances the clock", func() {
			future := clock.Now().Add(time.Hour).UnixMilli()
			So(s.Put(&Record{Name: "import.mp4", Created: future}), ShouldBeNil)

			next := &Record{Name: "later.mp4"}
			So(s.Put(next), ShouldBeNil)
			So(next.Created, ShouldEqual, future+1)
		})
	})
}

func TestUpdateMetadata(t *testing.T) {
	Convey("Given a stored record", t, func() {
		clock := clockwork.NewFakeClock()
		s := openMem(vfs.NewMem(), clock)
		defer s.Close()

		blob := []byte{0xde, 0xad, 0xbe, 0xef}
		So(s.Put(&Record{Name: "a.mp4", Blob: blob}), ShouldBeNil)
		before, _ := s.Get("a.mp4")

		Convey("Only the metadata fields change", func() {
			clock.Advance(5 * time.Second)
			So(s.UpdateMetadata("a.mp4", Metadata{LastPosition: 42.5, PlaybackState: constant.StatePlaying}), ShouldBeNil)

			after, _ := s.Get("a.mp4")
			rec := after.MustGet()
			So(rec.Blob, ShouldResemble, blob)
			So(rec.Created, ShouldEqual, before.MustGet().Created)
			So(rec.LastPosition, ShouldEqual, 42.5)
			So(rec.PlaybackState, ShouldEqual, constant.StatePlaying)
			So(rec.LastUpdated, ShouldEqual, clock.Now().UnixMilli())
		})

		Convey("A negative position is stored as zero", func() {
			So(s.UpdateMetadata("a.mp4", Metadata{LastPosition: -3}), ShouldBeNil)
			after, _ := s.Get("a.mp4")
			So(after.MustGet().LastPosition, ShouldEqual, 0)
		})

		Convey("Updating a missing record is a silent no-op", func() {
			So(s.UpdateMetadata("gone.mp4", Metadata{LastPosition: 1}), ShouldBeNil)
			got, _ := s.Get("gone.mp4")
			So(got.IsAbsent(), ShouldBeTrue)
		})
	})
}

func TestDeleteAndClear(t *testing.T) {
	Convey("Given a store with records", t, func() {
		s := openMem(vfs.NewMem(), clockwork.NewFakeClock())
		defer s.Close()

		for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
			So(s.Put(&Record{Name: name, Blob: []byte(name)}), ShouldBeNil)
		}

		Convey("Delete removes one record and its payload", func() {
			So(s.Delete("b.mp4"), ShouldBeNil)
			got, _ := s.Get("b.mp4")
			So(got.IsAbsent(), ShouldBeTrue)

			all, err := s.GetAll()
			So(err, ShouldBeNil)
			So(all, ShouldHaveLength, 2)
		})

		Convey("Delete of an absent name is not an error", func() {
			So(s.Delete("nope.mp4"), ShouldBeNil)
		})

		Convey("Clear empties the store and is idempotent", func() {
			So(s.Clear(), ShouldBeNil)
			all, err := s.GetAll()
			So(err, ShouldBeNil)
			So(all, ShouldBeEmpty)

			So(s.Clear(), ShouldBeNil)
			all, _ = s.GetAll()
			So(all, ShouldBeEmpty)
		})

		Convey("GetAll carries payloads and List does not", func() {
			all, _ := s.GetAll()
			for _, r := range all {
				So(string(r.Blob), ShouldEqual, r.Name)
			}

			listed, err := s.List()
			So(err, ShouldBeNil)
			So(listed, ShouldHaveLength, 3)
			for _, r := range listed {
				So(r.Blob, ShouldBeNil)
				So(r.Size, ShouldEqual, len(r.Name))
			}
		})
	})
}

func TestClose(t *testing.T) {
	Convey("Given a closed store", t, func() {
		s := openMem(vfs.NewMem(), clockwork.NewFakeClock())
		So(s.Close(), ShouldBeNil)

		Convey("Every operation reports ErrClosed", func() {
			_, err := s.Get("a.mp4")
			So(err, ShouldEqual, ErrClosed)
			_, err = s.GetAll()
			So(err, ShouldEqual, ErrClosed)
			_, err = s.List()
			So(err, ShouldEqual, ErrClosed)
			So(s.Put(&Record{Name: "a.mp4"}), ShouldEqual, ErrClosed)
			So(s.UpdateMetadata("a.mp4", Metadata{}), ShouldEqual, ErrClosed)
			So(s.Delete("a.mp4"), ShouldEqual, ErrClosed)
			So(s.Clear(), ShouldEqual, ErrClosed)
		})

		Convey("Closing twice is harmless", func() {
			So(s.Close(), ShouldBeNil)
		})
	})

	Convey("Given a store closed while it is being listed", t, func() {
		s := openMem(vfs.NewMem(), clockwork.NewFakeClock())
		for _, name := range []string{"a.mp4", "b.mp4", "c.mp4"} {
			So(s.Put(&Record{Name: name, Blob: []byte{1}}), ShouldBeNil)
		}

		results := make(chan error, 64)
		var wg sync.WaitGroup
		for range cap(results) {
			wg.Add(1)
			go func() {
				defer wg.Done()
				records, err := s.List()
				if err == nil && len(records) != 3 {
					err = fmt.Errorf("listed %d records", len(records))
				}
				results <- err
			}()
		}
		So(s.Close(), ShouldBeNil)
		wg.Wait()
		close(results)

		Convey("Each listing either completes or reports ErrClosed", func() {
			for err := range results {
				if err != nil {
					So(err, ShouldEqual, ErrClosed)
				}
			}
		})
	})
}
