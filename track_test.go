package mediafx

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type failingTrack struct {
	*BaseTrack
}

func (t *failingTrack) Close() error {
	t.BaseTrack.Close()
	return errors.New("device busy")
}

var errCloneFailed = errors.New("clone failed")

func (t *failingTrack) Clone() (MediaStreamTrack, error) { return nil, errCloneFailed }

func TestTrackState_String(t *testing.T) {
	assert.Equal(t, "live", TrackStateLive.String())
	assert.Equal(t, "ended", TrackStateEnded.String())
	assert.Equal(t, "unknown", TrackState(9).String())
}

func TestBaseTrack_CloseFiresEndedOnce(t *testing.T) {
	tr := NewBaseTrack("", "cam", TrackKindVideo)
	require.NotEmpty(t, tr.ID())
	assert.True(t, tr.Enabled())

	ended := make(chan struct{}, 2)
	tr.OnEnded(func() { ended <- struct{}{} })

	require.NoError(t, tr.Close())
	require.NoError(t, tr.Close())
	assert.Equal(t, TrackStateEnded, tr.State())

	select {
	case <-ended:
	case <-time.After(time.Second):
		t.Fatal("ended callback not fired")
	}
	select {
	case <-ended:
		t.Fatal("ended callback fired twice")
	case <-time.After(20 * time.Millisecond):
	}
}

func TestSimpleMediaStream_Membership(t *testing.T) {
	video := solidTrack(8, 8, 0, 0, 0)
	audio := NewAudioTrack("mic", AudioTrackSettings{SampleRate: 48000, ChannelCount: 1})
	s := NewMediaStream("", video, audio)

	require.NotEmpty(t, s.ID())
	assert.True(t, s.Active())
	assert.Len(t, s.GetTracks(), 2)
	require.Len(t, s.GetVideoTracks(), 1)
	require.Len(t, s.GetAudioTracks(), 1)
	assert.Equal(t, video.ID(), s.GetVideoTracks()[0].ID())
	assert.Equal(t, audio.ID(), s.GetTrackByID(audio.ID()).ID())
	assert.Nil(t, s.GetTrackByID("missing"))

	s.AddTrack(audio)
	assert.Len(t, s.GetTracks(), 2, "duplicate IDs are ignored")

	s.RemoveTrack(audio)
	assert.Empty(t, s.GetAudioTracks())
	assert.Len(t, s.GetTracks(), 1)
}

func TestSimpleMediaStream_ActiveFollowsTracks(t *testing.T) {
	s := NewMediaStream("s")
	assert.False(t, s.Active(), "empty stream is inactive")

	video := solidTrack(8, 8, 0, 0, 0)
	s.AddTrack(video)
	assert.True(t, s.Active())

	require.NoError(t, s.Close())
	assert.False(t, s.Active())
	assert.Len(t, s.GetTracks(), 1, "close keeps membership")
}

func TestSimpleMediaStream_Callbacks(t *testing.T) {
	s := NewMediaStream("")
	added := make(chan string, 1)
	removed := make(chan string, 1)
	s.OnAddTrack(func(tr MediaStreamTrack) { added <- tr.ID() })
	s.OnRemoveTrack(func(tr MediaStreamTrack) { removed <- tr.ID() })

	audio := NewAudioTrack("mic", AudioTrackSettings{})
	s.AddTrack(audio)
	s.RemoveTrack(audio)

	for _, ch := range []chan string{added, removed} {
		select {
		case id := <-ch:
			assert.Equal(t, audio.ID(), id)
		case <-time.After(time.Second):
			t.Fatal("callback not fired")
		}
	}
}

func TestSimpleMediaStream_Clone(t *testing.T) {
	audio := NewAudioTrack("mic", AudioTrackSettings{SampleRate: 16000})
	s := NewMediaStream("", solidTrack(8, 8, 1, 2, 3), audio)

	clone, err := s.Clone()
	require.NoError(t, err)
	assert.NotEqual(t, s.ID(), clone.ID())
	require.Len(t, clone.GetAudioTracks(), 1)
	assert.NotEqual(t, audio.ID(), clone.GetAudioTracks()[0].ID())
	assert.Equal(t, 16000, clone.GetAudioTracks()[0].Settings().SampleRate)

	broken := NewMediaStream("", &failingTrack{NewBaseTrack("", "x", TrackKindVideo)})
	_, err = broken.Clone()
	assert.ErrorIs(t, err, errCloneFailed)
}

func TestStopTracks_AggregatesErrors(t *testing.T) {
	ok := NewAudioTrack("a", AudioTrackSettings{})
	bad1 := &failingTrack{NewBaseTrack("", "b1", TrackKindAudio)}
	bad2 := &failingTrack{NewBaseTrack("", "b2", TrackKindAudio)}

	err := StopTracks([]MediaStreamTrack{ok, bad1, bad2})
	require.Error(t, err)
	assert.Contains(t, err.Error(), bad1.ID())
	assert.Contains(t, err.Error(), bad2.ID())
	requireEnded(t, ok, bad1, bad2)

	assert.NoError(t, StopTracks([]MediaStreamTrack{}))
}
