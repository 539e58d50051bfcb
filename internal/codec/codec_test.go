package codec

import (
	"math"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sensor-spy/backend/internal/models"
)

const fixedMillis int64 = 1657600000123

func newTestCodec(t *testing.T) (*Codec, *clock.Mock) {
	t.Helper()
	mock := clock.NewMock()
	mock.Set(time.UnixMilli(fixedMillis))
	return New(mock), mock
}

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		in   float32
		want string
	}{
		{1, "1.0"},
		{-0.5, "-0.5"},
		{0, "0.0"},
		{9.80665, "9.80665"},
		{0.1, "0.1"},
		{1e-5, "1e-05"},
		{float32(math.Inf(1)), "+Inf"},
	}
	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, FormatFloat(tt.in))
		})
	}

	t.Run("round trips through float32", func(t *testing.T) {
		for _, v := range []float32{0.1, 1.0 / 3.0, -273.15, 123456.78, 3.4e38, 1.4e-45} {
			got, err := ParseFloat(FormatFloat(v))
			require.NoError(t, err)
			assert.Equal(t, v, got)
		}
	})
}

func TestFormatSensorSample(t *testing.T) {
	c, mock := newTestCodec(t)

	t.Run("standard layout", func(t *testing.T) {
		line := c.FormatSensorSample(
			[]float32{0.1, 9.8, -0.2},
			[]float32{0, 0.01, 0.02},
			[]float32{30, -12.5, 44},
			[]float32{1, 0, 0, 0},
		)
		want := "1657600000123,0.1,9.8,-0.2,0.0,0.01,0.02,30.0,-12.5,44.0,1.0,0.0,0.0,0.0\n"
		assert.Equal(t, want, line)
	})

	t.Run("field count matches vector lengths", func(t *testing.T) {
		cases := [][4][]float32{
			{nil, nil, nil, nil},
			{{1}, nil, {2, 3}, nil},
			{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}, {1, 0, 0, 0}},
			{{1, 2, 3, 4, 5}, {}, {6}, {7, 8}},
		}
		for _, v := range cases {
			line := c.FormatSensorSample(v[0], v[1], v[2], v[3])
			require.True(t, strings.HasSuffix(line, "\n"))
			assert.False(t, strings.HasSuffix(line, "\n\n"))
			assert.Equal(t, 1, strings.Count(line, "\n"))

			fields := strings.Split(strings.TrimSuffix(line, "\n"), ",")
			assert.Len(t, fields, 1+len(v[0])+len(v[1])+len(v[2])+len(v[3]))

			ts, err := strconv.ParseInt(fields[0], 10, 64)
			require.NoError(t, err)
			assert.GreaterOrEqual(t, ts, int64(0))
		}
	})

	t.Run("empty vectors give only the timestamp", func(t *testing.T) {
		assert.Equal(t, "1657600000123\n", c.FormatSensorSample(nil, nil, nil, nil))
	})

	t.Run("timestamp follows the clock", func(t *testing.T) {
		mock.Add(250 * time.Millisecond)
		defer mock.Set(time.UnixMilli(fixedMillis))

		line := c.FormatSample(models.SensorSample{Acc: []float32{1}})
		assert.Equal(t, "1657600000373,1.0\n", line)
	})
}

func TestFormatPoint(t *testing.T) {
	c, _ := newTestCodec(t)

	t.Run("writes timestamp and coordinates", func(t *testing.T) {
		assert.Equal(t, "1657600000123,1.5,-2.25\n", c.FormatPoint([]float32{1.5, -2.25}))
	})

	t.Run("coordinates parse back", func(t *testing.T) {
		x, y := float32(12.345), float32(-0.001)
		line := c.FormatPoint([]float32{x, y})
		fields := strings.Split(strings.TrimSuffix(line, "\n"), ",")
		require.Len(t, fields, 3)

		gotX, err := ParseFloat(fields[1])
		require.NoError(t, err)
		gotY, err := ParseFloat(fields[2])
		require.NoError(t, err)
		assert.InDelta(t, x, gotX, 1e-6)
		assert.InDelta(t, y, gotY, 1e-6)
	})

	t.Run("panics on wrong arity", func(t *testing.T) {
		assert.Panics(t, func() { c.FormatPoint([]float32{1}) })
		assert.Panics(t, func() { c.FormatPoint([]float32{1, 2, 3}) })
		assert.Panics(t, func() { c.FormatPoint(nil) })
	})
}

func TestParsePointMap(t *testing.T) {
	tests := []struct {
		name string
		text string
		want models.PointMap
	}{
		{"empty", "", models.PointMap{}},
		{"two points", "a:1,2\nb:3,4\n", models.PointMap{"a": {1, 2}, "b": {3, 4}}},
		{"last write wins", "a:1,2\na:5,6\n", models.PointMap{"a": {5, 6}}},
		{
			"malformed lines dropped",
			"malformed_no_colon\na:1,2,3\nb:ok,ok\nc:7,8\n",
			models.PointMap{"c": {7, 8}},
		},
		{"blank lines", "\n\na:1,2\n\n", models.PointMap{"a": {1, 2}}},
		{"no trailing newline", "a:1,2", models.PointMap{"a": {1, 2}}},
		{"colon with nothing after", "a:\nb:1,2\n", models.PointMap{"b": {1, 2}}},
		{"trailing comma", "a:1,2,\n", models.PointMap{"a": {1, 2}}},
		{"crlf line endings", "a:1,2\r\nb:3,4\r\n", models.PointMap{"a": {1, 2}, "b": {3, 4}}},
		{"empty middle field", "a:1,,2\n", models.PointMap{}},
		{"second colon stays in rest", "a:1,2:3\n", models.PointMap{}},
		{"negative and fractional", "door:-1.5,0.25\n", models.PointMap{"door": {-1.5, 0.25}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePointMapString(tt.text)
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("ParsePointMapString() mismatch (-want +got):\n%s", diff)
			}
		})
	}

	t.Run("nil means nothing read", func(t *testing.T) {
		got := ParsePointMap(nil)
		require.NotNil(t, got)
		assert.Empty(t, got)
	})

	t.Run("present text", func(t *testing.T) {
		text := "a:1,2\n"
		assert.Equal(t, models.PointMap{"a": {1, 2}}, ParsePointMap(&text))
	})
}

func TestParsePointLines(t *testing.T) {
	results := ParsePointLines("a:1,2\n\nnope\nb:x,1\nc:1,2,3\n")
	require.Len(t, results, 4)

	assert.Equal(t, models.LineKept, results[0].Status)
	assert.Equal(t, 1, results[0].Line)
	assert.Equal(t, "a", results[0].Name)

	assert.Equal(t, models.LineSkipped, results[1].Status)
	assert.Equal(t, 3, results[1].Line)
	assert.Contains(t, results[1].Reason, "':'")

	assert.Equal(t, models.LineSkipped, results[2].Status)
	assert.Equal(t, "invalid x coordinate", results[2].Reason)

	assert.Equal(t, models.LineSkipped, results[3].Status)
	assert.Equal(t, "expected 2 coordinates, got 3", results[3].Reason)
}

func TestFormatPointAnnotation(t *testing.T) {
	points := []models.Point{{Name: "a", X: 1, Y: 2}, {Name: "b", X: -0.5, Y: 3.25}}

	var b strings.Builder
	for _, p := range points {
		b.WriteString(FormatPointAnnotation(p))
	}
	assert.Equal(t, "a:1.0,2.0\nb:-0.5,3.25\n", b.String())

	got := ParsePointMapString(b.String())
	assert.Equal(t, models.PointMap{"a": {1, 2}, "b": {-0.5, 3.25}}, got)
}

func TestParseSensorSampleLine(t *testing.T) {
	c, _ := newTestCodec(t)
	sample := models.SensorSample{
		Acc:  []float32{0.1, 9.8, -0.2},
		Gyro: []float32{0, 0.01, 0.02},
		Mag:  []float32{30, -12.5, 44},
		Quat: []float32{1, 0, 0, 0},
	}

	t.Run("reads back a formatted line", func(t *testing.T) {
		got, err := ParseSensorSampleLine(c.FormatSample(sample), models.DefaultSampleLayout)
		require.NoError(t, err)
		assert.Equal(t, fixedMillis, got.TimestampMs)
		assert.Equal(t, sample, got.SensorSample)
	})

	t.Run("rejects wrong width", func(t *testing.T) {
		_, err := ParseSensorSampleLine("1,2,3\n", models.DefaultSampleLayout)
		assert.Error(t, err)
	})

	t.Run("rejects bad timestamp", func(t *testing.T) {
		line := "x" + strings.Repeat(",1", models.DefaultSampleLayout.Width())
		_, err := ParseSensorSampleLine(line, models.DefaultSampleLayout)
		assert.ErrorContains(t, err, "invalid timestamp")
	})

	t.Run("rejects bad value", func(t *testing.T) {
		line := "1" + strings.Repeat(",1", 12) + ",z"
		_, err := ParseSensorSampleLine(line, models.DefaultSampleLayout)
		assert.ErrorContains(t, err, "field 14")
	})
}

func TestFormatSensorInfo(t *testing.T) {
	t.Run("header only", func(t *testing.T) {
		assert.Equal(t, SensorInfoHeader+"\n", FormatSensorInfo(nil))
	})

	t.Run("one row per sensor", func(t *testing.T) {
		got := FormatSensorInfo([]models.SensorInfo{
			{Name: "BMI160 Accelerometer", Vendor: "Bosch", Version: 1},
			{Name: "AK09918 Magnetometer", Vendor: "AKM", Version: 2},
		})
		want := "名称,制造商,版本\n" +
			"BMI160 Accelerometer,Bosch,1\n" +
			"AK09918 Magnetometer,AKM,2\n"
		assert.Equal(t, want, got)
	})
}
