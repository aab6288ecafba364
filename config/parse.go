package config

import (
	"fmt"
	"strconv"

	levenshtein "github.com/ka-weihe/fast-levenshtein"
	"github.com/samber/lo"
)

// Parse converts raw command line values into the type of the field's default.
func (f *Field) Parse(raw []string) (any, error) {
	if _, ok := f.Value.([]string); ok {
		return raw, nil
	}
	if len(raw) != 1 {
		return nil, fmt.Errorf("%s takes exactly one value", f.Key)
	}

	value := raw[0]
	switch f.Value.(type) {
	case string:
		return value, nil
	case int:
		n, err := strconv.Atoi(value)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid integer %q", f.Key, value)
		}
		return n, nil
	case float64:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid number %q", f.Key, value)
		}
		return n, nil
	case bool:
		b, err := strconv.ParseBool(value)
		if err != nil {
			return nil, fmt.Errorf("%s: invalid boolean %q", f.Key, value)
		}
		return b, nil
	}
	return nil, fmt.Errorf("%s: unsupported type %s", f.Key, f.TypeName())
}

// Closest returns the registered key with the smallest edit distance to name.
func Closest(name string) string {
	return lo.MinBy(lo.Keys(Default), func(a, b string) bool {
		return levenshtein.Distance(name, a) < levenshtein.Distance(name, b)
	})
}
