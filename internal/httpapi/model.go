package httpapi

import (
	"math"

	"pulsewatch/internal/stats"
)

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string `json:"status"`
}

// StatsResponse mirrors stats.Record's wire shape for GET /stats.
type StatsResponse struct {
	Min       float64 `json:"min"`
	Max       float64 `json:"max"`
	CurrAvg   float64 `json:"curr_avg"`
	SMA       float64 `json:"sma"`
	DataPoint uint64  `json:"data_point"`
}

// FromRecord converts an engine Record into its wire representation.
func FromRecord(r stats.Record) StatsResponse {
	return StatsResponse{
		Min:       r.Min,
		Max:       r.Max,
		CurrAvg:   r.CurrAvg,
		SMA:       r.SMA,
		DataPoint: r.DataPoint,
	}
}

// AppendMsgPack encodes a StatsResponse as a fixed-shape MsgPack array,
// using a zero-allocation hand-rolled encoder for the live /stream push
// frames: [min, max, curr_avg, sma, data_point].
func (s StatsResponse) AppendMsgPack(b []byte) []byte {
	b = append(b, 0x95) // FixArray(5)
	b = appendFloat64(b, s.Min)
	b = appendFloat64(b, s.Max)
	b = appendFloat64(b, s.CurrAvg)
	b = appendFloat64(b, s.SMA)
	b = appendUint64(b, s.DataPoint)
	return b
}

func appendFloat64(b []byte, v float64) []byte {
	b = append(b, 0xcb)
	bits := math.Float64bits(v)
	return append(b, byte(bits>>56), byte(bits>>48), byte(bits>>40), byte(bits>>32),
		byte(bits>>24), byte(bits>>16), byte(bits>>8), byte(bits))
}

func appendUint64(b []byte, v uint64) []byte {
	if v <= 127 {
		return append(b, byte(v))
	}
	b = append(b, 0xcf)
	return append(b, byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
