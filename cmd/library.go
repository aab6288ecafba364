package cmd

import (
	"errors"
	"fmt"
	"os"

	"github.com/offplay/offplay/constant"
	"github.com/offplay/offplay/notify"
	"github.com/offplay/offplay/playlist"
	"github.com/offplay/offplay/store"
	"github.com/offplay/offplay/where"
	"github.com/spf13/cobra"
)

// library is the store plus its projection, for commands that do not play anything.
type library struct {
	store    *store.Store
	playlist *playlist.Projection
}

func openLibrary() (*library, error) {
	s, err := store.Open(where.Database(), nil)
	if err != nil {
		return nil, err
	}

	p := playlist.New(s)
	if err := p.Refresh(); err != nil {
		_ = s.Close()
		return nil, err
	}
	return &library{store: s, playlist: p}, nil
}

func (l *library) Close() error {
	return l.store.Close()
}

// find returns the named record or a not-found error with a suggestion.
func (l *library) find(name string) (*store.Record, error) {
	found, err := l.store.Get(name)
	if err != nil {
		return nil, err
	}

	if rec, ok := found.Get(); ok {
		return rec, nil
	}

	msg := constant.NoticeNotFound
	if closest, ok := l.playlist.Closest(name).Get(); ok {
		msg += " " + fmt.Sprintf(constant.NoticeDidYouMeanHint, closest)
	}
	return nil, errors.New(msg)
}

func notifierFor(yes bool) notify.Notifier {
	if yes {
		return &notify.Printer{Out: os.Stdout, Answer: true}
	}
	return &notify.Survey{}
}

func completionVideoNames(_ *cobra.Command, _ []string, _ string) ([]string, cobra.ShellCompDirective) {
	lib, err := openLibrary()
	if err != nil {
		return nil, cobra.ShellCompDirectiveError
	}
	defer lib.Close()

	return lib.playlist.Names(), cobra.ShellCompDirectiveNoFileComp
}
