package volume

import (
	"context"
	"math"

	"codeberg.org/mutker/hoststatus/internal/errors"
	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
)

const (
	defaultSinkName = "@DEFAULT_SINK@"
	// volumeNorm is PA_VOLUME_NORM, the raw channel volume for 100%.
	volumeNorm = 0x10000
)

// PulseDialer connects to the PulseAudio (or pipewire-pulse) server over its native protocol.
type PulseDialer struct {
	AppName string
}

func (d PulseDialer) Dial(ctx context.Context) (Conn, error) {
	type result struct {
		client *pulse.Client
		err    error
	}

	done := make(chan result, 1)
	go func() {
		c, err := pulse.NewClient(pulse.ClientApplicationName(d.AppName))
		done <- result{client: c, err: err}
	}()

	select {
	case r := <-done:
		if r.err != nil {
			return nil, r.err
		}
		return &pulseConn{client: r.client}, nil
	case <-ctx.Done():
		go func() {
			if r := <-done; r.client != nil {
				r.client.Close()
			}
		}()
		return nil, errors.New().Wrap(ErrQueryTimeout, ctx.Err())
	}
}

type pulseConn struct {
	client *pulse.Client
}

func (c *pulseConn) Volume(ctx context.Context) (uint8, error) {
	reply := &proto.GetSinkInfoReply{}
	done := make(chan error, 1)
	go func() {
		done <- c.client.RawRequest(&proto.GetSinkInfo{
			SinkIndex: proto.Undefined,
			SinkName:  defaultSinkName,
		}, reply)
	}()

	select {
	case err := <-done:
		if err != nil {
			return 0, err
		}
	case <-ctx.Done():
		// The caller closes the connection, which unblocks the request.
		return 0, errors.New().Wrap(ErrQueryTimeout, ctx.Err())
	}

	return NormalizeVolume(reply.ChannelVolumes, reply.Mute)
}

func (c *pulseConn) Close() error {
	c.client.Close()
	return nil
}

// NormalizeVolume averages raw channel volumes into 0-100. Muted sinks read 0 and
// volumes above 100% are clamped.
func NormalizeVolume(channels []uint32, muted bool) (uint8, error) {
	if len(channels) == 0 {
		return 0, errors.New().WithData(ErrMalformed, "sink reports no channels")
	}
	if muted {
		return 0, nil
	}

	var sum float64
	for _, v := range channels {
		sum += float64(v)
	}

	percent := math.Round(sum / float64(len(channels)) / volumeNorm * 100)
	if percent > MaxPercent {
		percent = MaxPercent
	}

	return uint8(percent), nil
}
