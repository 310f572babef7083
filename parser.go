package kkr

import (
	"errors"
	"fmt"

	"go.uber.org/zap"
)

// msgPrefix starts every extraction error message
const msgPrefix = "Error parsing output of KKR: "

// msgFallback is reported when the parse fails outside of any single
// extractor
const msgFallback = msgPrefix + "something went wrong"

// Parser turns the output directory of a finished KKR run into a
// Record. It holds no state between calls and may be shared.
type Parser struct {
	Files FileNames
	// SkipReadin skips everything read from the SCF iterations, for
	// runs that do not iterate
	SkipReadin bool
	Logger     *zap.Logger
}

func NewParser(conf Config, logger *zap.Logger) *Parser {
	files := conf.Files
	for _, r := range Roles {
		if files[r] == "" {
			files[r] = DefaultFileNames[r]
		}
	}
	return &Parser{
		Files:      files,
		SkipReadin: conf.SkipReadin,
		Logger:     logger,
	}
}

func (p *Parser) logger() *zap.Logger {
	if p.Logger == nil {
		return zap.NewNop()
	}
	return p.Logger
}

type Result struct {
	Success  bool
	Errors   []string
	Warnings []string
	Record   *Record
}

// ParseDir locates and parses the run in dir, starting the record from
// seed
func (p *Parser) ParseDir(dir string, seed *Record) Result {
	src, located, err := p.Locate(dir)
	if err != nil {
		p.logger().Warn("no output to parse",
			zap.String("dir", dir), zap.Error(err))
		return Result{
			Errors: []string{ErrOutputNotFound.Error()},
			Record: NewRecord(),
		}
	}
	ok, errs, rec := p.Parse(seed, src, located...)
	var warns []string
	if v, has := rec.Get("parser_warnings"); has {
		warns, _ = v.([]string)
	}
	return Result{
		Success:  ok,
		Errors:   errs,
		Warnings: warns,
		Record:   rec,
	}
}

// Parse extracts every field it can from src and classifies the
// extraction issues together with located, the issues found while
// locating src. It never panics. Without the main output the result is
// a failure with a single error and an empty record.
func (p *Parser) Parse(seed *Record, src Sources, located ...Issue) (
	success bool, errs []string, rec *Record) {
	if src.Main == nil {
		return false, []string{ErrOutputNotFound.Error()}, NewRecord()
	}
	defer func() {
		if r := recover(); r != nil {
			p.logger().Error("parse failed",
				zap.Any("panic", r), zap.Stack("stack"))
			success = false
			errs = []string{msgFallback}
			rec = seed.Clone()
			rec.Set("parser_errors", errs)
		}
	}()
	rec, issues := p.Extract(seed, src)
	errs, warns := Classify(rec, append(issues, located...))
	rec.Set("parser_errors", errs)
	if len(warns) > 0 {
		rec.Set("parser_warnings", warns)
	}
	return len(errs) == 0, errs, rec
}

// Extract runs every extractor in order against src. Each one either
// adds all of its fields to the record or none of them and one Issue.
func (p *Parser) Extract(seed *Record, src Sources) (*Record, []Issue) {
	rec := seed.Clone()
	var issues []Issue
	for _, e := range extractors {
		if e.readin && p.SkipReadin {
			continue
		}
		err := p.attempt(e, rec, &src)
		switch {
		case err == nil:
			p.logger().Debug("extracted", zap.String("field", e.what))
		case errors.Is(err, errSkip):
			p.logger().Debug("skipped", zap.String("field", e.what))
		default:
			p.logger().Debug("extraction failed",
				zap.String("field", e.what),
				zap.Stringer("severity", e.severity),
				zap.Error(err))
			issues = append(issues, e.issue())
		}
	}
	return rec, issues
}

// attempt runs e on a scratch record and merges the result into rec
// only when e succeeds
func (p *Parser) attempt(e extractor, rec *Record, src *Sources) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("panic in %s: %v", e.what, r)
		}
	}()
	x := &extraction{Sources: src, rec: rec, out: NewRecord()}
	if err := e.run(x); err != nil {
		return err
	}
	rec.merge(x.out)
	return nil
}
