package app

import (
	"context"
	"errors"
	"io"
	"testing"
	"time"

	"attendance_dashboard/internal/domain/attendance"
	"attendance_dashboard/internal/domain/query"

	"github.com/sirupsen/logrus"
)

func testLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

type staticClass attendance.Record

func (c staticClass) ClassRecord() attendance.Record { return attendance.Record(c) }

var (
	classRecord = attendance.Record{Name: "Period 1", Present: 5, Absent: 3, Late: 2}
	charlie     = attendance.Record{Name: "Charlie Kirk", Present: 150, Absent: 20, Late: 15}
	justin      = attendance.Record{Name: "Justin Bell", Present: 155, Absent: 10, Late: 20}
	justina     = attendance.Record{Name: "Justina Ortiz", Present: 149, Absent: 11, Late: 25}
)

func directory() []attendance.StudentRecord {
	return []attendance.StudentRecord{
		{Key: "charlie", Record: charlie},
		{Key: "justin", Record: justin},
		{Key: "justina", Record: justina},
	}
}

// fetchFunc adapts a function to ReportFetcher.
type fetchFunc func(ctx context.Context, q string) (attendance.Record, bool, error)

func (f fetchFunc) FetchReport(ctx context.Context, q string) (attendance.Record, bool, error) {
	return f(ctx, q)
}

func TestQueryResolver_ClassAliasesUnderBothStrategies(t *testing.T) {
	noRemote := fetchFunc(func(context.Context, string) (attendance.Record, bool, error) {
		t.Error("remote fetch called for a class alias")
		return attendance.Record{}, false, nil
	})
	strategies := map[string]StudentStrategy{
		StrategyLocal:  NewLocalStrategy(directory()),
		StrategyRemote: NewRemoteStrategy(noRemote, time.Second),
	}

	for name, strategy := range strategies {
		r := NewQueryResolver(staticClass(classRecord), strategy, testLogger())
		for _, raw := range []string{"", "  ", "class", "CLASS", " all "} {
			if r.IsAsync(raw) {
				t.Errorf("%s: IsAsync(%q) = true, want false", name, raw)
			}
			got, err := r.Resolve(context.Background(), raw)
			if err != nil {
				t.Fatalf("%s: Resolve(%q) error = %v", name, raw, err)
			}
			if got.Intent.Kind != query.ClassSummary {
				t.Errorf("%s: Resolve(%q) intent = %v, want ClassSummary", name, raw, got.Intent.Kind)
			}
			if got.Report != classRecord {
				t.Errorf("%s: Resolve(%q) report = %+v, want %+v", name, raw, got.Report, classRecord)
			}
		}
	}
}

func TestQueryResolver_ClassIsIdempotent(t *testing.T) {
	r := NewQueryResolver(staticClass(classRecord), NewLocalStrategy(directory()), testLogger())

	first, err1 := r.Resolve(context.Background(), "class")
	second, err2 := r.Resolve(context.Background(), "class")
	if err1 != nil || err2 != nil {
		t.Fatalf("Resolve() errors = %v, %v", err1, err2)
	}
	if first != second {
		t.Errorf("Resolve(class) twice = %+v then %+v, want identical", first, second)
	}
}

func TestQueryResolver_LocalKeyContainedInQuery(t *testing.T) {
	students := []attendance.StudentRecord{
		{Key: "charlie", Record: charlie},
		{Key: "bob", Record: attendance.Record{Name: "Bob Smith", Present: 160, Absent: 15, Late: 10}},
	}
	r := NewQueryResolver(staticClass(classRecord), NewLocalStrategy(students), testLogger())

	for _, st := range students {
		for _, raw := range []string{st.Key, "  " + st.Key + " ", "report for " + st.Key + " please"} {
			got, err := r.Resolve(context.Background(), raw)
			if err != nil {
				t.Fatalf("Resolve(%q) error = %v", raw, err)
			}
			want := query.Intent{Kind: query.StudentLookup, Key: st.Key}
			if got.Intent != want {
				t.Errorf("Resolve(%q) intent = %+v, want %+v", raw, got.Intent, want)
			}
			if got.Report != st.Record {
				t.Errorf("Resolve(%q) report = %+v, want %+v", raw, got.Report, st.Record)
			}
		}
	}
}

func TestQueryResolver_PartialKey(t *testing.T) {
	r := NewQueryResolver(staticClass(classRecord), NewLocalStrategy(directory()), testLogger())

	got, err := r.Resolve(context.Background(), "char")
	if err != nil {
		t.Fatalf("Resolve(char) error = %v", err)
	}
	if got.Intent.Key != "charlie" || got.Report != charlie {
		t.Errorf("Resolve(char) = %+v, want charlie %+v", got, charlie)
	}
}

func TestMatchStudent_TieBreak(t *testing.T) {
	tests := []struct {
		name    string
		q       string
		wantKey string
	}{
		// Both "justin" and "justina" contain "ustin"; mapping order decides.
		{"partial matches several keys", "ustin", "justin"},
		// "justina" contains "justin"; a key inside the query beats a key
		// that merely contains the query.
		{"exact key beats longer key", "justin", "justin"},
		{"longest contained key wins", "justina", "justina"},
		{"longest contained key in a sentence", "show justina ortiz", "justina"},
		{"no match", "zed", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := MatchStudent(directory(), tt.q)
			if ok != (tt.wantKey != "") {
				t.Fatalf("MatchStudent(%q) ok = %v", tt.q, ok)
			}
			if got.Key != tt.wantKey {
				t.Errorf("MatchStudent(%q) key = %q, want %q", tt.q, got.Key, tt.wantKey)
			}
		})
	}

	reordered := []attendance.StudentRecord{directory()[2], directory()[1]}
	if got, _ := MatchStudent(reordered, "ustin"); got.Key != "justina" {
		t.Errorf("MatchStudent(reordered, ustin) key = %q, want %q", got.Key, "justina")
	}
}

func TestNewLocalStrategy_NormalizesKeys(t *testing.T) {
	s := NewLocalStrategy([]attendance.StudentRecord{
		{Key: "  ", Record: justin},
		{Key: " Charlie ", Record: charlie},
	})
	key, rec, err := s.Lookup(context.Background(), "charlie")
	if err != nil {
		t.Fatalf("Lookup() error = %v", err)
	}
	if key != "charlie" || rec != charlie {
		t.Errorf("Lookup() = %q %+v, want charlie %+v", key, rec, charlie)
	}
}

func TestQueryResolver_LocalNotFound(t *testing.T) {
	r := NewQueryResolver(staticClass(classRecord), NewLocalStrategy(directory()), testLogger())

	_, err := r.Resolve(context.Background(), "zed")
	if !errors.Is(err, query.ErrNotFound) {
		t.Errorf("Resolve(zed) error = %v, want ErrNotFound", err)
	}
	var re *query.ResolveError
	if !errors.As(err, &re) || re.Query != "zed" {
		t.Errorf("Resolve(zed) error = %#v, want ResolveError for %q", err, "zed")
	}
}

func TestQueryResolver_Remote(t *testing.T) {
	tests := []struct {
		name    string
		fetch   fetchFunc
		want    attendance.Record
		wantErr error
	}{
		{
			name: "found",
			fetch: func(_ context.Context, q string) (attendance.Record, bool, error) {
				if q != "charlie" {
					t.Errorf("fetch query = %q, want normalized %q", q, "charlie")
				}
				return charlie, true, nil
			},
			want: charlie,
		},
		{
			name: "empty body",
			fetch: func(context.Context, string) (attendance.Record, bool, error) {
				return attendance.Record{}, false, nil
			},
			wantErr: query.ErrNotFound,
		},
		{
			name: "transport error",
			fetch: func(context.Context, string) (attendance.Record, bool, error) {
				return attendance.Record{}, false, errors.New("connection refused")
			},
			wantErr: query.ErrTransportFailure,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewQueryResolver(staticClass(classRecord), NewRemoteStrategy(tt.fetch, time.Second), testLogger())
			if !r.IsAsync("Charlie") {
				t.Error("IsAsync(Charlie) = false, want true")
			}

			got, err := r.Resolve(context.Background(), "  Charlie ")
			if tt.wantErr != nil {
				if !errors.Is(err, tt.wantErr) {
					t.Errorf("Resolve() error = %v, want %v", err, tt.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("Resolve() error = %v", err)
			}
			want := query.Intent{Kind: query.StudentLookup, Key: "charlie"}
			if got.Intent != want || got.Report != tt.want {
				t.Errorf("Resolve() = %+v, want %+v %+v", got, want, tt.want)
			}
		})
	}
}

func TestRemoteStrategy_Timeout(t *testing.T) {
	slow := fetchFunc(func(ctx context.Context, _ string) (attendance.Record, bool, error) {
		<-ctx.Done()
		return attendance.Record{}, false, ctx.Err()
	})
	r := NewQueryResolver(staticClass(classRecord), NewRemoteStrategy(slow, 20*time.Millisecond), testLogger())

	start := time.Now()
	_, err := r.Resolve(context.Background(), "charlie")
	if !errors.Is(err, query.ErrTransportFailure) {
		t.Errorf("Resolve() error = %v, want ErrTransportFailure", err)
	}
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Resolve() error = %v, want to wrap context.DeadlineExceeded", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("Resolve() took %v, want about 20ms", elapsed)
	}
}

func TestNewRemoteStrategy_DefaultTimeout(t *testing.T) {
	s := NewRemoteStrategy(fetchFunc(nil), 0)
	if s.timeout != DefaultRemoteTimeout {
		t.Errorf("timeout = %v, want %v", s.timeout, DefaultRemoteTimeout)
	}
}
