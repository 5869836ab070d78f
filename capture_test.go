package mediafx

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrackFrameSource_BindRequiresVideo(t *testing.T) {
	s := NewTrackFrameSource(quietLogger())

	err := s.Bind(NewMediaStream("", NewAudioTrack("mic", AudioTrackSettings{})))
	assert.ErrorIs(t, err, ErrNoVideoTrack)

	assert.ErrorIs(t, s.Bind(nil), ErrNoVideoTrack)
}

func TestTrackFrameSource_Unbound(t *testing.T) {
	s := NewTrackFrameSource(quietLogger())

	w, h := s.Dimensions()
	assert.Zero(t, w)
	assert.Zero(t, h)

	_, err := s.Capture(context.Background())
	assert.ErrorIs(t, err, ErrSourceNotBound)
	assert.ErrorIs(t, s.Start(context.Background()), ErrSourceNotBound)

	assert.NotPanics(t, s.Unbind)
}

func TestTrackFrameSource_CaptureFollowsTrackSize(t *testing.T) {
	track := solidTrack(8, 6, 10, 20, 30)
	s := NewTrackFrameSource(quietLogger())
	require.NoError(t, s.Bind(NewMediaStream("", track)))
	require.NoError(t, s.Start(context.Background()))
	assert.True(t, s.Running())

	frame, err := s.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 8, frame.Width)
	assert.Equal(t, 6, frame.Height)
	r, g, b, _ := frame.Pixel(0, 0)
	assert.Equal(t, []uint8{10, 20, 30}, []uint8{r, g, b})

	require.NoError(t, track.ApplyConstraints(TrackConstraints{Width: 4, Height: 2}))
	w, h := s.Dimensions()
	assert.Equal(t, 4, w)
	assert.Equal(t, 2, h)

	frame, err = s.Capture(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 4, frame.Width)
	assert.Equal(t, 2, frame.Height)

	s.Stop()
	assert.False(t, s.Running())
}

func TestTrackFrameSource_CaptureEndedTrack(t *testing.T) {
	track := solidTrack(4, 4, 0, 0, 0)
	s := NewTrackFrameSource(quietLogger())
	require.NoError(t, s.Bind(NewMediaStream("", track)))
	require.NoError(t, track.Close())

	_, err := s.Capture(context.Background())
	assert.ErrorIs(t, err, ErrTrackEnded)
}

func TestTrackFrameSource_StartSuperseded(t *testing.T) {
	track := newBlockingTrack(4, 4)
	s := NewTrackFrameSource(quietLogger())
	require.NoError(t, s.Bind(NewMediaStream("", track)))

	errCh := make(chan error, 1)
	go func() { errCh <- s.Start(context.Background()) }()

	select {
	case <-track.reading:
	case <-time.After(time.Second):
		t.Fatal("start did not read from the track")
	}
	s.Stop()
	close(track.release)

	select {
	case err := <-errCh:
		assert.ErrorIs(t, err, ErrStartSuperseded)
	case <-time.After(time.Second):
		t.Fatal("start did not return")
	}
	assert.False(t, s.Running())
}
