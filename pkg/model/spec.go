package model

import (
	"github.com/do-/ru-eludia-base/pkg/model/def"
	"github.com/do-/ru-eludia-base/pkg/types"
)

// ColumnSpec is a declarative column definition, as read from model files.
type ColumnSpec struct {
	Name      string `json:"name" yaml:"name"`
	Type      string `json:"type" yaml:"type"`
	Length    int    `json:"length,omitempty" yaml:"length,omitempty"`
	Precision int    `json:"precision,omitempty" yaml:"precision,omitempty"`

	// Default is default text in def.Parse syntax; nil means no default
	Default *string `json:"default,omitempty" yaml:"default,omitempty"`

	// Nullable without a Default declares the NULL default
	Nullable bool   `json:"nullable,omitempty" yaml:"nullable,omitempty"`
	Remark   string `json:"remark" yaml:"remark"`

	Min         *string `json:"min,omitempty" yaml:"min,omitempty"`
	Max         *string `json:"max,omitempty" yaml:"max,omitempty"`
	MinLength   int     `json:"min_length,omitempty" yaml:"min_length,omitempty"`
	FixedLength bool    `json:"fixed_length,omitempty" yaml:"fixed_length,omitempty"`
}

// Build validates the column definition and creates the column.
func (s ColumnSpec) Build() (*Col, error) {
	kind, err := types.ParseTypeKind(s.Type)
	if err != nil {
		return nil, invalidDefinition(s.Name, "cannot parse type", err)
	}

	var (
		token    interface{}
		hasToken bool
	)
	switch {
	case s.Default != nil:
		token, hasToken = def.Parse(*s.Default), true
	case s.Nullable:
		token, hasToken = def.Null, true
	}

	c, err := newCol(s.Name, kind, s.Remark, s.Length, s.Precision, token, hasToken)
	if err != nil {
		return nil, err
	}

	if s.Nullable {
		c.SetNullable(true)
	}
	if s.Min != nil {
		c.SetMin(*s.Min)
	}
	if s.Max != nil {
		c.SetMax(*s.Max)
	}
	if s.MinLength < 0 {
		return nil, invalidDefinition(c.Name(), "negative min_length", nil)
	}
	c.SetMinLength(s.MinLength)
	if s.FixedLength {
		c.SetFixedLength(true)
	}

	return c, nil
}
