// internal/app/query_resolver.go
package app

import (
	"context"
	"errors"
	"strings"
	"time"

	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/query"

	"github.com/sirupsen/logrus"
)

// Strategy names accepted in configuration.
const (
	StrategyLocal  = "local"
	StrategyRemote = "remote"
)

// DefaultRemoteTimeout bounds a single report service request.
const DefaultRemoteTimeout = 10 * time.Second

// ClassRecordProvider exposes the precomputed class-wide record.
type ClassRecordProvider interface {
	ClassRecord() attendance.Record
}

// StudentStrategy resolves a normalized, non-alias query to one student.
// Errors returned are *query.ResolveError.
type StudentStrategy interface {
	Lookup(ctx context.Context, q string) (key string, rec attendance.Record, err error)
	// Remote reports whether Lookup performs network I/O.
	Remote() bool
}

// QueryResolver turns raw search text into a resolved query.
// It holds no mutable state.
type QueryResolver struct {
	class    ClassRecordProvider
	strategy StudentStrategy
	logger   *logrus.Entry
}

func NewQueryResolver(class ClassRecordProvider, strategy StudentStrategy, logger *logrus.Entry) *QueryResolver {
	return &QueryResolver{
		class:    class,
		strategy: strategy,
		logger:   logger.WithField("component", "query_resolver"),
	}
}

// IsAsync reports whether resolving raw would go over the network.
// Class aliases never do.
func (r *QueryResolver) IsAsync(raw string) bool {
	return query.Parse(raw).Kind == query.StudentLookup && r.strategy.Remote()
}

// Resolve classifies raw and looks up its record. Any error returned is a
// *query.ResolveError.
func (r *QueryResolver) Resolve(ctx context.Context, raw string) (query.Resolved, error) {
	intent := query.Parse(raw)
	if intent.Kind == query.ClassSummary {
		return query.Resolved{Intent: intent, Report: r.class.ClassRecord()}, nil
	}

	key, rec, err := r.strategy.Lookup(ctx, intent.Key)
	if err != nil {
		var re *query.ResolveError
		if !errors.As(err, &re) {
			err = query.TransportFailure(intent.Key, err)
		}
		r.logger.WithError(err).WithFields(logrus.Fields{
			"query": intent.Key,
			"kind":  query.KindOf(err).String(),
		}).Info("Query did not resolve")
		return query.Resolved{}, err
	}

	r.logger.WithFields(logrus.Fields{"query": intent.Key, "key": key}).Debug("Query resolved to student")
	return query.Resolved{
		Intent: query.Intent{Kind: query.StudentLookup, Key: key},
		Report: rec,
	}, nil
}

// LocalStrategy matches queries against a fixed, ordered student mapping.
type LocalStrategy struct {
	students []attendance.StudentRecord
}

// NewLocalStrategy copies students, normalizing keys and dropping empty ones.
func NewLocalStrategy(students []attendance.StudentRecord) *LocalStrategy {
	out := make([]attendance.StudentRecord, 0, len(students))
	for _, st := range students {
		st.Key = query.Normalize(st.Key)
		if st.Key == "" {
			continue
		}
		out = append(out, st)
	}
	return &LocalStrategy{students: out}
}

func (s *LocalStrategy) Lookup(_ context.Context, q string) (string, attendance.Record, error) {
	st, ok := MatchStudent(s.students, q)
	if !ok {
		return "", attendance.Record{}, query.NotFound(q)
	}
	return st.Key, st.Record, nil
}

func (s *LocalStrategy) Remote() bool { return false }

// MatchStudent finds the student for normalized query q by substring containment.
// Keys contained in the query win first, longest key first so "justina" is not
// shadowed by "justin"; equal lengths keep mapping order. Failing that, the
// first key in mapping order that contains the query (partial input such as
// "char" for "charlie") wins.
func MatchStudent(students []attendance.StudentRecord, q string) (attendance.StudentRecord, bool) {
	if q == "" {
		return attendance.StudentRecord{}, false
	}

	best := -1
	for i, st := range students {
		if st.Key == "" || !strings.Contains(q, st.Key) {
			continue
		}
		if best < 0 || len(st.Key) > len(students[best].Key) {
			best = i
		}
	}
	if best >= 0 {
		return students[best], true
	}

	for _, st := range students {
		if st.Key != "" && strings.Contains(st.Key, q) {
			return st, true
		}
	}
	return attendance.StudentRecord{}, false
}

// ReportFetcher performs the outbound report request.
// found is false when the service answered with no record.
type ReportFetcher interface {
	FetchReport(ctx context.Context, q string) (rec attendance.Record, found bool, err error)
}

// RemoteStrategy asks the external report service for each student query.
type RemoteStrategy struct {
	fetcher ReportFetcher
	timeout time.Duration
}

// NewRemoteStrategy wraps fetcher; a non-positive timeout uses DefaultRemoteTimeout.
func NewRemoteStrategy(fetcher ReportFetcher, timeout time.Duration) *RemoteStrategy {
	if timeout <= 0 {
		timeout = DefaultRemoteTimeout
	}
	return &RemoteStrategy{fetcher: fetcher, timeout: timeout}
}

func (s *RemoteStrategy) Lookup(ctx context.Context, q string) (string, attendance.Record, error) {
	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rec, found, err := s.fetcher.FetchReport(ctx, q)
	if err != nil {
		return "", attendance.Record{}, query.TransportFailure(q, err)
	}
	if !found {
		return "", attendance.Record{}, query.NotFound(q)
	}
	return q, rec, nil
}

func (s *RemoteStrategy) Remote() bool { return true }
