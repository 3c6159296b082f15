package redis

import (
	"context"
	"errors"
	"slices"
	"testing"
	"time"

	"github.com/redis/rueidis"
	"github.com/redis/rueidis/mock"
	"go.uber.org/mock/gomock"

	"github.com/kailas-cloud/snipdex/internal/db"
	"github.com/kailas-cloud/snipdex/internal/domain/search/filter"
	"github.com/kailas-cloud/snipdex/internal/domain/vector"
)

// --- client.go tests ---

func TestPing_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.Result(mock.RedisString("PONG")))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestPing_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("PING")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	if err := s.Ping(context.Background()); err == nil {
		t.Fatal("expected error")
	}
}

// --- kv.go tests ---

func TestGet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "emb:abc")).
		Return(mock.Result(mock.RedisBlobString("value")))

	s := NewStoreForTest(c)
	data, err := s.Get(context.Background(), "emb:abc")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if string(data) != "value" {
		t.Errorf("unexpected data: %s", data)
	}
}

func TestGet_NotFound(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "emb:abc")).
		Return(mock.Result(mock.RedisNil()))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "emb:abc")
	if !errors.Is(err, db.ErrKeyNotFound) {
		t.Errorf("expected ErrKeyNotFound, got %v", err)
	}
}

func TestGet_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("GET", "emb:abc")).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.Get(context.Background(), "emb:abc")
	if errors.Is(err, db.ErrKeyNotFound) {
		t.Error("should not be ErrKeyNotFound for network errors")
	}
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %T", err)
	}
}

func TestSet_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.Match("SET", "k", "v")).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.Set(context.Background(), "k", []byte("v")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestSetWithTTL_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "SET" && cmd[1] == "k" && cmd[2] == "v" && slices.Contains(cmd, "EX")
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	if err := s.SetWithTTL(context.Background(), "k", []byte("v"), time.Minute); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

// --- point.go tests ---

func TestUpsert_WritesFieldsNumericsAndBlobs(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	blob := string(vector.ToBytes([]float32{0.5, 0.25}))

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			if cmd[0] != "HSET" || cmd[1] != "snip:rec-1" {
				return false
			}
			pairs := map[string]string{}
			for i := 2; i+1 < len(cmd); i += 2 {
				pairs[cmd[i]] = cmd[i+1]
			}
			return pairs["summary"] == "clicks login" &&
				pairs["popularity"] == "7" &&
				pairs["main_vec"] == blob
		})).
		Return(mock.Result(mock.RedisInt64(3)))

	s := NewStoreForTest(c)
	err := s.Upsert(context.Background(), "snippets", &db.Point{
		Key:      "snip:rec-1",
		Fields:   map[string]string{"summary": "clicks login"},
		Numerics: map[string]float64{"popularity": 7},
		Vectors:  map[string][]float32{"main_vec": {0.5, 0.25}},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestUpsert_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "HSET" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	err := s.Upsert(context.Background(), "snippets", &db.Point{Key: "snip:x", Fields: map[string]string{"a": "b"}})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

// --- index.go tests ---

func TestCreateIndex_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.CREATE" && cmd[1] == "snippets" && cmd[2] == "ON" && cmd[3] == "HASH"
		})).
		Return(mock.Result(mock.RedisString("OK")))

	s := NewStoreForTest(c)
	def, err := db.NewIndex("snippets").Prefix("snip:").Tag("keywords", ",").
		VectorHNSW("main_vec", 4, db.DistanceCosine, 16, 200).Build()
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if err := s.CreateIndex(context.Background(), def); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestCreateIndex_AlreadyExists(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.CREATE" })).
		Return(mock.Result(mock.RedisError("Index already exists")))

	s := NewStoreForTest(c)
	idx := &db.IndexDefinition{Name: "snippets", Fields: []db.IndexField{{Name: "f", Type: db.IndexFieldTag}}}
	if err := s.CreateIndex(context.Background(), idx); !errors.Is(err, db.ErrIndexExists) {
		t.Errorf("expected ErrIndexExists, got %v", err)
	}
}

func TestIndexExists(t *testing.T) {
	tests := []struct {
		name  string
		reply rueidis.RedisResult
		want  bool
	}{
		{"present", mock.Result(mock.RedisArray(mock.RedisString("index_name"), mock.RedisString("snippets"))), true},
		{"absent", mock.Result(mock.RedisError("Unknown Index name")), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctrl := gomock.NewController(t)
			c := mock.NewClient(ctrl)
			c.EXPECT().Do(gomock.Any(), mock.Match("FT.INFO", "snippets")).Return(tt.reply)

			got, err := NewStoreForTest(c).IndexExists(context.Background(), "snippets")
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("IndexExists() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestBuildFieldArgs_AllTypes(t *testing.T) {
	tests := []struct {
		field db.IndexField
		want  []string
	}{
		{db.IndexField{Name: "n", Type: db.IndexFieldNumeric}, []string{"n", "NUMERIC"}},
		{db.IndexField{Name: "t", Type: db.IndexFieldText}, []string{"t", "TEXT"}},
		{db.IndexField{Name: "k", Type: db.IndexFieldTag, TagSeparator: ","}, []string{"k", "TAG", "SEPARATOR", ","}},
		{db.IndexField{Name: "v", Type: db.IndexFieldVector, VectorDim: 4},
			[]string{"v", "VECTOR", "FLAT", "6", "TYPE", "FLOAT32", "DIM", "4", "DISTANCE_METRIC", "COSINE"}},
	}
	for _, tt := range tests {
		got, err := buildFieldArgs(&tt.field)
		if err != nil {
			t.Fatalf("%s: unexpected error: %v", tt.field.Name, err)
		}
		if !slices.Equal(got, tt.want) {
			t.Errorf("%s: got %v, want %v", tt.field.Name, got, tt.want)
		}
	}
}

func TestBuildFieldArgs_Errors(t *testing.T) {
	bad := []db.IndexField{
		{Name: "", Type: db.IndexFieldTag},
		{Name: "v", Type: db.IndexFieldVector},
		{Name: "x", Type: db.IndexFieldType(99)},
	}
	for _, f := range bad {
		if _, err := buildFieldArgs(&f); err == nil {
			t.Errorf("expected error for %+v", f)
		}
	}
}

// --- search.go tests ---

func TestSearchKNN_Success(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	summaryVec := []float32{0.1, 0.2}

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool {
			return cmd[0] == "FT.SEARCH" && cmd[1] == "snippets" &&
				cmd[2] == "(@framework:{playwright})=>[KNN 5 @main_vec $BLOB AS __score]"
		})).
		Return(mock.Result(mock.RedisArray(
			mock.RedisInt64(1),
			mock.RedisString("snip:rec-1"),
			mock.RedisArray(
				mock.RedisString("__score"),
				mock.RedisString("0.1"), // distance 0.1 -> similarity 0.9
				mock.RedisString("summary"),
				mock.RedisString("clicks login"),
				mock.RedisString("summary_vec"),
				mock.RedisBlobString(string(vector.ToBytes(summaryVec))),
			),
		)))

	m, _ := filter.NewMatch("framework", "playwright")
	expr, _ := filter.NewExpression([]filter.Condition{m}, nil, nil)

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName:     "snippets",
		VectorField:   "main_vec",
		Filters:       expr,
		Vector:        []float32{0.1, 0.2},
		K:             5,
		ReturnFields:  []string{"summary"},
		ReturnVectors: []string{"summary_vec"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(result.Entries))
	}
	e := result.Entries[0]
	if e.Key != "snip:rec-1" {
		t.Errorf("expected key snip:rec-1, got %s", e.Key)
	}
	if e.Score < 0.89 || e.Score > 0.91 {
		t.Errorf("expected score ~0.9, got %f", e.Score)
	}
	if e.Fields["summary"] != "clicks login" {
		t.Errorf("Fields = %v", e.Fields)
	}
	if _, ok := e.Fields["summary_vec"]; ok {
		t.Error("vector blob must not stay in Fields")
	}
	if !slices.Equal(e.Vectors["summary_vec"], summaryVec) {
		t.Errorf("Vectors = %v", e.Vectors)
	}
}

func TestSearchKNN_Empty(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.Result(mock.RedisArray(mock.RedisInt64(0))))

	s := NewStoreForTest(c)
	result, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "snippets", VectorField: "main_vec", Vector: []float32{1}, K: 3,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(result.Entries) != 0 {
		t.Errorf("expected no entries, got %d", len(result.Entries))
	}
}

func TestSearchKNN_Error(t *testing.T) {
	ctrl := gomock.NewController(t)
	c := mock.NewClient(ctrl)

	c.EXPECT().
		Do(gomock.Any(), mock.MatchFn(func(cmd []string) bool { return cmd[0] == "FT.SEARCH" })).
		Return(mock.ErrorResult(context.DeadlineExceeded))

	s := NewStoreForTest(c)
	_, err := s.SearchKNN(context.Background(), &db.KNNQuery{
		IndexName: "snippets", VectorField: "main_vec", Vector: []float32{1}, K: 3,
	})
	if !isDBError(err) {
		t.Errorf("expected db.Error, got %v", err)
	}
}

func TestSearchKNN_Validation(t *testing.T) {
	s := &Store{}
	bad := []*db.KNNQuery{
		{VectorField: "v", Vector: []float32{1}, K: 1},
		{IndexName: "i", Vector: []float32{1}, K: 1},
		{IndexName: "i", VectorField: "v", K: 1},
		{IndexName: "i", VectorField: "v", Vector: []float32{1}},
	}
	for _, q := range bad {
		if _, err := s.SearchKNN(context.Background(), q); err == nil {
			t.Errorf("expected error for %+v", q)
		}
	}
}

func TestBuildFilter(t *testing.T) {
	fw, _ := filter.NewMatch("framework", "selenium")
	lang, _ := filter.NewMatch("language", "java-script")
	r, _ := filter.NewRangeFilter(ptr(2), nil, nil, ptr(10))
	pop, _ := filter.NewRange("popularity", r)

	expr, _ := filter.NewExpression([]filter.Condition{fw}, []filter.Condition{lang, pop}, []filter.Condition{fw})
	got := buildFilter(expr)
	want := `@framework:{selenium} (@language:{java\-script} | @popularity:[(2 10]) -@framework:{selenium}`
	if got != want {
		t.Errorf("buildFilter() = %q, want %q", got, want)
	}
	if buildFilter(filter.Expression{}) != "" {
		t.Error("empty expression must produce empty filter")
	}
}

// --- helpers ---

func ptr(f float64) *float64 { return &f }

// isDBError is a test helper for checking wrapped db.Error.
func isDBError(err error) bool {
	var dbErr *db.Error
	return errors.As(err, &dbErr)
}
