package jpegls

import (
	"github.com/kolibri91/charls/codec"
)

// DICOM transfer syntax UIDs for JPEG-LS.
const (
	// UIDLossless is JPEG-LS Lossless Image Compression.
	UIDLossless = "1.2.840.10008.1.2.4.80"

	// UIDNearLossless is JPEG-LS Lossy (Near-Lossless) Image Compression.
	UIDNearLossless = "1.2.840.10008.1.2.4.81"
)

func init() {
	codec.Register(&registeredCodec{uid: UIDLossless, name: "jpeg-ls-lossless"})
	codec.Register(&registeredCodec{uid: UIDNearLossless, name: "jpeg-ls-near-lossless", defaultNear: 2})
}

// registeredCodec adapts the package API to the codec registry.
type registeredCodec struct {
	uid         string
	name        string
	defaultNear int
}

func (c *registeredCodec) UID() string  { return c.uid }
func (c *registeredCodec) Name() string { return c.name }

func (c *registeredCodec) Encode(params codec.EncodeParams) ([]byte, error) {
	frame := FrameInfo{
		Width:         params.Width,
		Height:        params.Height,
		BitsPerSample: params.BitDepth,
		Components:    params.Components,
	}

	opts := EncodeOptions{NearLossless: c.defaultNear}
	switch o := params.Options.(type) {
	case nil:
	case *Options:
		if o == nil {
			break
		}
		if err := o.Validate(); err != nil {
			return nil, err
		}
		opts.NearLossless = o.NEAR
		opts.Interleave = o.Interleave
		opts.Preset = o.Preset
	case *codec.BaseOptions:
		if o == nil {
			break
		}
		if err := o.Validate(); err != nil {
			return nil, err
		}
		opts.NearLossless = o.NearLossless
	default:
		if err := params.Options.Validate(); err != nil {
			return nil, err
		}
	}

	// The lossless transfer syntax never carries loss.
	if c.uid == UIDLossless {
		opts.NearLossless = 0
	}

	// Sample interleave keeps the conventional pixel-interleaved layout
	// for colour images handed over as RGBRGB.
	if frame.Components > 1 && opts.Interleave == InterleaveNone && params.Options == nil {
		opts.Interleave = InterleaveSample
	}

	return Encode(params.PixelData, frame, &opts)
}

func (c *registeredCodec) Decode(data []byte) (*codec.DecodeResult, error) {
	pixels, frame, err := Decode(data)
	if err != nil {
		return nil, err
	}
	return &codec.DecodeResult{
		PixelData:  pixels,
		Width:      frame.Width,
		Height:     frame.Height,
		Components: frame.Components,
		BitDepth:   frame.BitsPerSample,
	}, nil
}
