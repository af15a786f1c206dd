package artifact

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/parquet-go/parquet-go"

	"github.com/okian/encore/internal/domain/model"
)

const readBatchSize = 256

// columns holds the leaf column index of each recognized column, or -1
// when the artifact does not carry it.
type columns struct {
	user   int
	track  int
	score  int
	rank   int
	listen int
}

// Decode parses a parquet artifact into table rows, preserving row
// order. A missing track_id column is a fatal schema error; the other
// columns are optional and decode to nil when absent or null.
func Decode(name model.TableName, data []byte) ([]model.Row, error) {
	f, err := parquet.OpenFile(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
	}

	schema := f.Schema()
	track, ok := schema.Lookup("track_id")
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrMissingTrackColumn, name)
	}
	cols := columns{user: -1, track: track.ColumnIndex, score: -1, rank: -1, listen: -1}
	if c, found := schema.Lookup("user_id"); found {
		cols.user = c.ColumnIndex
	}
	if c, found := schema.Lookup("score"); found {
		cols.score = c.ColumnIndex
	}
	if c, found := schema.Lookup("rank"); found {
		cols.rank = c.ColumnIndex
	}
	if c, found := schema.Lookup("listen_count"); found {
		cols.listen = c.ColumnIndex
	}

	out := make([]model.Row, 0, f.NumRows())
	buf := make([]parquet.Row, readBatchSize)
	for _, rg := range f.RowGroups() {
		rows := rg.Rows()
		for {
			n, readErr := rows.ReadRows(buf)
			for _, pr := range buf[:n] {
				row, convErr := convertRow(name, pr, cols)
				if convErr != nil {
					_ = rows.Close()
					return nil, convErr
				}
				out = append(out, row)
			}
			if readErr != nil {
				if errors.Is(readErr, io.EOF) {
					break
				}
				_ = rows.Close()
				return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, readErr)
			}
		}
		if err := rows.Close(); err != nil {
			return nil, fmt.Errorf("%w: %s: %w", ErrDecode, name, err)
		}
	}
	return out, nil
}

func convertRow(name model.TableName, pr parquet.Row, cols columns) (model.Row, error) {
	var row model.Row
	trackSet := false
	for _, v := range pr {
		if v.IsNull() {
			continue
		}
		switch v.Column() {
		case cols.track:
			row.TrackID = asInt64(v)
			trackSet = true
		case cols.user:
			row.UserID = asInt64(v)
		case cols.score:
			s := asFloat64(v)
			row.Score = &s
		case cols.rank:
			r := asInt64(v)
			row.Rank = &r
		case cols.listen:
			l := asInt64(v)
			row.ListenCount = &l
		}
	}
	if !trackSet {
		return model.Row{}, fmt.Errorf("%w: %s: null track_id", ErrDecode, name)
	}
	return row, nil
}

// asInt64 widens any integer physical type; the pipeline has published
// both int32 and int64 columns over time.
func asInt64(v parquet.Value) int64 {
	switch v.Kind() {
	case parquet.Int32:
		return int64(v.Int32())
	case parquet.Double:
		return int64(v.Double())
	case parquet.Float:
		return int64(v.Float())
	default:
		return v.Int64()
	}
}

func asFloat64(v parquet.Value) float64 {
	switch v.Kind() {
	case parquet.Float:
		return float64(v.Float())
	case parquet.Int32:
		return float64(v.Int32())
	case parquet.Int64:
		return float64(v.Int64())
	default:
		return v.Double()
	}
}
