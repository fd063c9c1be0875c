package stream

import (
	"errors"
	"testing"

	"github.com/all-the-day/xhs-to-youtube/internal/model"
)

func TestSelect(t *testing.T) {
	tests := []struct {
		name       string
		candidates []model.MediaStream
		wantDesc   string
	}{
		{
			name: "prefer h265 over watermarked h264",
			candidates: []model.MediaStream{
				{Codec: model.CodecH264, Desc: "WM_X264_MP4_web", Rank: 2},
				{Codec: model.CodecH265, Desc: "X265_MP4_WEB_114", Rank: 1},
			},
			wantDesc: "X265_MP4_WEB_114",
		},
		{
			name: "highest rank within clean h265",
			candidates: []model.MediaStream{
				{Codec: model.CodecH265, Desc: "X265_MP4_WEB_540", Rank: 1},
				{Codec: model.CodecH265, Desc: "X265_MP4_WEB_1080", Rank: 3},
				{Codec: model.CodecH265, Desc: "X265_MP4_WEB_720", Rank: 2},
			},
			wantDesc: "X265_MP4_WEB_1080",
		},
		{
			name: "clean h264 beats watermarked h265",
			candidates: []model.MediaStream{
				{Codec: model.CodecH265, Desc: "WM_X265_MP4_WEB", Rank: 9},
				{Codec: model.CodecH264, Desc: "X264_MP4_web", Rank: 1},
			},
			wantDesc: "X264_MP4_web",
		},
		{
			name: "all watermarked prefers h265",
			candidates: []model.MediaStream{
				{Codec: model.CodecH264, Desc: "WM_X264_MP4_web", Rank: 5},
				{Codec: model.CodecH265, Desc: "WM_X265_MP4_WEB", Rank: 1},
			},
			wantDesc: "WM_X265_MP4_WEB",
		},
		{
			name: "only watermarked h264",
			candidates: []model.MediaStream{
				{Codec: model.CodecH264, Desc: "WM_X264_MP4_web", Rank: 1},
			},
			wantDesc: "WM_X264_MP4_web",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Select(tt.candidates)
			if err != nil {
				t.Fatalf("Select() error = %v", err)
			}
			if got.Desc != tt.wantDesc {
				t.Errorf("Select() = %q, want %q", got.Desc, tt.wantDesc)
			}
		})
	}

	t.Run("empty candidates", func(t *testing.T) {
		_, err := Select(nil)
		if !errors.Is(err, ErrNoStream) {
			t.Errorf("Select(nil) error = %v, want ErrNoStream", err)
		}
	})
}

func TestWatermarked(t *testing.T) {
	tests := []struct {
		desc string
		want bool
	}{
		{"WM_X264_MP4_web", true},
		{"WMX265", true},
		{"X265_WM_MP4", true},
		{"X265_MP4_WEB_114", false},
		{"", false},
	}

	for _, tt := range tests {
		if got := Watermarked(tt.desc); got != tt.want {
			t.Errorf("Watermarked(%q) = %v, want %v", tt.desc, got, tt.want)
		}
	}
}
