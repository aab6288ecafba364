package mini

import (
	"fmt"

	"github.com/AlecAivazis/survey/v2"
	"github.com/offplay/offplay/icon"
	"github.com/offplay/offplay/style"
	"github.com/offplay/offplay/util"
	"github.com/samber/lo"
)

// bind is a menu action listed after the items.
type bind struct {
	name string
}

func (b *bind) String() string { return b.name }

func (b *bind) eq(other *bind) bool { return b == other }

var (
	quit     = &bind{"Quit"}
	back     = &bind{"Back"}
	upload   = &bind{"Add videos"}
	clearAll = &bind{"Delete all"}

	playPause = &bind{"Play / Pause"}
	stop      = &bind{"Stop"}
	next      = &bind{"Next"}
	prev      = &bind{"Previous"}
	forward   = &bind{"Forward"}
	rewind    = &bind{"Rewind"}
	remove    = &bind{"Delete"}
	refresh   = &bind{"Refresh"}
)

type entry string

func (e entry) String() string { return string(e) }

func title(s string) {
	fmt.Println(style.Title(s))
}

func fail(s string) {
	fmt.Println(style.Fg(style.Current().Error)(icon.Get(icon.Fail) + " " + s))
}

// progress prints s and returns a function that erases it.
func progress(s string) (erase func()) {
	return util.PrintErasable(style.Subtle(s))
}

// resolve maps a selected option back to either a bind or an item.
func resolve[T fmt.Stringer](items []T, binds []*bind, choice int) (*bind, T) {
	var zero T
	if choice < len(items) {
		return nil, items[choice]
	}
	if i := choice - len(items); i < len(binds) {
		return binds[i], zero
	}
	return quit, zero
}

// menu asks the user to pick one of items or binds.
func menu[T fmt.Stringer](items []T, binds ...*bind) (*bind, T, error) {
	options := append(
		lo.Map(items, func(t T, _ int) string { return t.String() }),
		lo.Map(binds, func(b *bind, _ int) string { return b.String() })...,
	)

	var choice int
	prompt := &survey.Select{
		Message:  "Select",
		Options:  options,
		PageSize: min(max(len(options), 1), pageSize),
	}
	if err := survey.AskOne(prompt, &choice); err != nil {
		var zero T
		return nil, zero, err
	}

	b, item := resolve(items, binds, choice)
	return b, item, nil
}

type input struct {
	value string
}

func getInput(validate func(string) bool) (*input, error) {
	var value string
	prompt := &survey.Input{Message: ">"}
	err := survey.AskOne(prompt, &value, survey.WithValidator(func(ans interface{}) error {
		if s, ok := ans.(string); ok && validate(s) {
			return nil
		}
		return fmt.Errorf("invalid input")
	}))
	if err != nil {
		return nil, err
	}
	return &input{value: value}, nil
}
