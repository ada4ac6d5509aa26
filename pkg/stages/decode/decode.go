// Package decode implements the stage that streams a file through the
// incremental decoder.
package decode

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/user/jxlstream/pkg/decoder"
	"github.com/user/jxlstream/pkg/imagecodec"
	"github.com/user/jxlstream/pkg/pipeline"
	"github.com/user/jxlstream/pkg/ports"
)

// ErrTruncated is returned when the file ends before the full image.
var ErrTruncated = errors.New("jxlstream: truncated stream")

const defaultChunkSize = 64 * 1024

// Stage decodes a file chunk by chunk.
type Stage struct {
	fs     ports.FileSystem
	runner ports.ParallelRunner
	mm     ports.MemoryManager
	sink   ports.DebugSink
	logger ports.Logger
}

// NewStage creates a new decode stage. A nil runner decodes sequentially
// and a nil memory manager uses the decoder default.
func NewStage(fs ports.FileSystem, runner ports.ParallelRunner, mm ports.MemoryManager, sink ports.DebugSink, logger ports.Logger) *Stage {
	return &Stage{
		fs:     fs,
		runner: runner,
		mm:     mm,
		sink:   sink,
		logger: logger.WithComponent("decode"),
	}
}

// session is the state of one Execute call.
type session struct {
	dec       *decoder.Decoder
	result    pipeline.DecodeResult
	cursor    *decoder.Cursor
	snapshots int
	lastDone  int
}

// Execute decodes input.Path into a pixel buffer.
func (s *Stage) Execute(ctx context.Context, input pipeline.DecodeInput) (pipeline.DecodeResult, error) {
	chunkSize := input.ChunkSize
	if chunkSize <= 0 {
		chunkSize = defaultChunkSize
	}

	f, err := s.fs.Open(input.Path)
	if err != nil {
		return pipeline.DecodeResult{}, fmt.Errorf("open input: %w", err)
	}
	defer f.Close()

	dec := decoder.New(
		decoder.WithMemoryManager(s.mm),
		decoder.WithLogger(s.logger),
		decoder.WithKeepOrientation(input.KeepOrientation),
	)
	defer dec.Close()

	if s.runner != nil {
		if err := dec.SetParallelRunner(s.runner); err != nil {
			return pipeline.DecodeResult{}, err
		}
	}
	if err := dec.SubscribeEvents(decoder.EventBasicInfo | decoder.EventColorEncoding | decoder.EventFullImage); err != nil {
		return pipeline.DecodeResult{}, err
	}

	s.logger.Debug("Decoding %s in chunks of %d bytes", input.Path, chunkSize)

	ss := &session{dec: dec, cursor: decoder.NewCursor(nil)}
	buf := make([]byte, chunkSize)
	eof := false

	for {
		ev, err := dec.ProcessInput(ss.cursor)
		if err != nil {
			s.saveEvents(ss)
			return ss.result, fmt.Errorf("decode at byte %d: %w", ss.offset(), err)
		}
		if ev != decoder.EventNeedMoreInput {
			ss.record(ev)
		}

		switch ev {
		case decoder.EventNeedMoreInput:
			if input.Snapshots {
				s.snapshot(ss)
			}
			if eof {
				s.saveEvents(ss)
				return ss.result, fmt.Errorf("%w: ends after %d bytes", ErrTruncated, ss.result.BytesRead)
			}
			select {
			case <-ctx.Done():
				return ss.result, ctx.Err()
			default:
			}

			n, err := io.ReadFull(f, buf)
			switch {
			case errors.Is(err, io.EOF), errors.Is(err, io.ErrUnexpectedEOF):
				eof = true
			case err != nil:
				return ss.result, fmt.Errorf("read input: %w", err)
			}
			ss.cursor.Refill(buf[:n])
			ss.result.BytesRead += int64(n)
			ss.result.Chunks++

		case decoder.EventBasicInfo:
			info, err := dec.GetBasicInfo()
			if err != nil {
				return ss.result, err
			}
			ss.result.Info = info
			s.logger.Debug("Basic info: %dx%d, %d bits, container %t", info.Xsize, info.Ysize, info.BitsPerSample, info.HaveContainer)
			if s.sink.Enabled() {
				if data, err := json.MarshalIndent(info, "", "  "); err == nil {
					s.save(s.sink.SaveBasicInfoJSON(data))
				}
			}

		case decoder.EventColorEncoding:
			enc, err := dec.GetColorEncoding()
			if err != nil {
				return ss.result, err
			}
			ss.result.Color = enc

		case decoder.EventNeedOutputBuffer:
			if err := s.bind(ss, input); err != nil {
				return ss.result, err
			}

		case decoder.EventFullImage:
			s.saveEvents(ss)
			s.logger.Debug("Decoded %d groups from %d bytes in %d chunks", ss.result.Grid.NumGroups(), ss.result.BytesRead, ss.result.Chunks)
			return ss.result, nil

		default:
			return ss.result, fmt.Errorf("%w: decoder finished without an image", ErrTruncated)
		}
	}
}

// bind allocates and binds the output buffer.
func (s *Stage) bind(ss *session, input pipeline.DecodeInput) error {
	format := input.Format
	if format.NumChannels == 0 {
		def, err := ss.dec.DefaultPixelFormat()
		if err != nil {
			return err
		}
		format = def
	}

	size, err := ss.dec.OutputBufferSize(format)
	if err != nil {
		return fmt.Errorf("size output buffer: %w", err)
	}
	pixels := make([]byte, size)
	if err := ss.dec.SetOutputBuffer(format, pixels); err != nil {
		return fmt.Errorf("bind output buffer: %w", err)
	}

	grid, err := ss.dec.Grid()
	if err != nil {
		return err
	}
	ss.result.Format = format
	ss.result.Pixels = pixels
	ss.result.Grid = grid
	return nil
}

// snapshot saves the partially decoded image when new groups arrived.
func (s *Stage) snapshot(ss *session) {
	if !s.sink.Enabled() || ss.result.Pixels == nil {
		return
	}
	if err := ss.dec.FlushImage(); err != nil {
		return
	}
	decoded, _ := ss.dec.Progress()
	if decoded == ss.lastDone {
		return
	}
	ss.lastDone = decoded

	info := ss.result.Info
	img, err := imagecodec.ToImage(ss.result.Pixels, int(info.Xsize), int(info.Ysize), ss.result.Format)
	if err != nil {
		s.save(err)
		return
	}
	s.save(s.sink.SaveFlushedImage(ss.snapshots, img))
	ss.snapshots++
}

func (s *Stage) saveEvents(ss *session) {
	if !s.sink.Enabled() {
		return
	}
	if data, err := json.MarshalIndent(ss.result.Events, "", "  "); err == nil {
		s.save(s.sink.SaveEventsJSON(data))
	}
}

func (s *Stage) save(err error) {
	if err != nil {
		s.logger.Warn("Failed to save debug output: %s", err)
	}
}

func (ss *session) offset() int64 {
	return ss.result.BytesRead - int64(ss.cursor.Remaining())
}

func (ss *session) record(ev decoder.Event) {
	decoded, _ := ss.dec.Progress()
	ss.result.Events = append(ss.result.Events, pipeline.EventRecord{
		Event:  ev.String(),
		Offset: ss.offset(),
		Groups: decoded,
	})
}
