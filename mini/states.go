package mini

import (
	"fmt"
	"strings"

	"github.com/offplay/offplay/filesystem"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/intake"
	"github.com/offplay/offplay/key"
	"github.com/offplay/offplay/log"
	"github.com/offplay/offplay/session"
	"github.com/offplay/offplay/util"
	"github.com/samber/lo"
	"github.com/spf13/afero"
	"github.com/spf13/viper"
)

type state int

const (
	libraryState state = iota + 1
	playingState
	uploadState
	quitState
)

func (m *mini) handleLibraryState() error {
	snap := m.session.Snapshot()

	title(fmt.Sprintf("Library (%s)", util.Quantify(len(snap.Names), "video", "videos")))
	binds := []*bind{upload}
	if len(snap.Names) > 0 {
		binds = append(binds, clearAll)
	}
	if snap.Current != "" {
		binds = append(binds, back)
	}
	binds = append(binds, quit)

	b, name, err := menu(lo.Map(snap.Names, func(n string, _ int) entry { return entry(n) }), binds...)
	if err != nil {
		return err
	}

	switch b {
	case nil:
		if err := m.session.Load(string(name)); err != nil {
			log.Info(err)
			return nil
		}
		m.newState(playingState)
	case upload:
		m.newState(uploadState)
	case clearAll:
		if _, err := m.session.ClearAll(); err != nil {
			fail(err.Error())
		}
	case back:
		m.newState(playingState)
	case quit:
		m.newState(quitState)
	}
	return nil
}

func describe(snap session.Snapshot) string {
	var sb strings.Builder

	switch snap.State {
	case session.Playing:
		sb.WriteString(icon.Get(icon.Play))
	case session.Paused:
		sb.WriteString(icon.Get(icon.Pause))
	default:
		sb.WriteString(icon.Get(icon.Video))
	}

	fmt.Fprintf(&sb, " %s  %s / %s  %sx",
		snap.Current,
		util.FormatTime(snap.Position),
		util.FormatTime(snap.Duration),
		fmt.Sprint(snap.Rate),
	)

	switch {
	case snap.Failed:
		sb.WriteString("  (cannot play)")
	case snap.State == session.Loading:
		sb.WriteString("  (loading)")
	}
	return sb.String()
}

func (m *mini) handlePlayingState() error {
	snap := m.session.Snapshot()
	if snap.Current == "" {
		m.previousState()
		return nil
	}

	util.ClearScreen()
	title(describe(snap))

	b, _, err := menu([]entry{}, playPause, stop, forward, rewind, next, prev, refresh, remove, back, quit)
	if err != nil {
		return err
	}

	skip := viper.GetFloat64(key.SkipLong)
	switch b {
	case playPause:
		err = m.session.PlayPause()
	case stop:
		err = m.session.Stop()
	case forward:
		err = m.session.Skip(skip)
	case rewind:
		err = m.session.Skip(-skip)
	case next:
		err = m.session.Next()
	case prev:
		err = m.session.Prev()
	case remove:
		_, err = m.session.Delete(snap.Current)
	case back:
		m.previousState()
	case quit:
		m.newState(quitState)
	}

	if err != nil {
		fail(err.Error())
	}
	return nil
}

func (m *mini) handleUploadState() error {
	title("Add videos: path or glob pattern")
	in, err := getInput(func(s string) bool { return strings.TrimSpace(s) != "" })
	if err != nil {
		return err
	}

	erase := progress("Reading files..")
	paths, err := afero.Glob(filesystem.API(), strings.TrimSpace(in.value))
	if err != nil {
		erase()
		return err
	}

	var files []*intake.File
	for _, path := range paths {
		f, err := intake.FromPath(path)
		if err != nil {
			log.Warn(err)
			continue
		}
		files = append(files, f)
	}
	erase()

	if len(files) == 0 {
		fail("No files found")
		m.previousState()
		return nil
	}

	stored, err := m.session.Upload(files)
	if err != nil {
		fail(err.Error())
	}

	if len(stored) > 0 && m.session.Snapshot().Current == stored[0] {
		m.setState(playingState)
		return nil
	}
	m.previousState()
	return nil
}
