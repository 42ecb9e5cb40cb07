// modemctl drives the soundmodem engine against a real audio device: it
// sends a payload as a waveform through the default output device, or
// listens on the default input device and prints decoded payloads.
package main

import (
	"encoding/binary"
	"fmt"
	"math"
	"os"

	"github.com/charmbracelet/log"
	"github.com/gordonklaus/portaudio"
	"github.com/spf13/pflag"

	"github.com/kb9vty/soundmodem/engine"
)

func main() {
	var (
		protocolID = pflag.IntP("protocol", "p", engine.ProtocolAudibleFast, "Protocol ID to use")
		volume     = pflag.IntP("volume", "V", 50, "Transmit volume, 0-100")
		verbose    = pflag.BoolP("verbose", "v", false, "Enable debug logging")
		help       = pflag.BoolP("help", "h", false, "Display help text")
	)

	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "%s - data-over-sound modem demo.\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Usage:\n  %s send <text>\n  %s listen\n\n", os.Args[0], os.Args[0])
		pflag.PrintDefaults()
	}
	pflag.Parse()

	if *help || pflag.NArg() == 0 {
		pflag.Usage()
		os.Exit(0)
	}

	logger := log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})
	if *verbose {
		logger.SetLevel(log.DebugLevel)
	} else {
		logger.SetLevel(log.InfoLevel)
	}

	if err := portaudio.Initialize(); err != nil {
		logger.Fatal("portaudio init failed", "err", err)
	}
	defer portaudio.Terminate()

	switch pflag.Arg(0) {
	case "send":
		if pflag.NArg() < 2 {
			logger.Fatal("send requires a text argument")
		}
		if err := runSend(logger, pflag.Arg(1), *protocolID, *volume); err != nil {
			logger.Fatal("send failed", "err", err)
		}
	case "listen":
		if err := runListen(logger); err != nil {
			logger.Fatal("listen failed", "err", err)
		}
	default:
		pflag.Usage()
		os.Exit(1)
	}
}

func runSend(logger *log.Logger, text string, protocolID, volume int) error {
	params := engine.DefaultParameters()
	params.Logger = engine.NewLogger(logger)

	h, err := engine.NewHandle(params)
	if err != nil {
		return err
	}
	defer h.Free()

	if err := h.Init([]byte(text), protocolID, volume); err != nil {
		return err
	}

	outBuf := make([]float32, params.SamplesPerFrame)
	stream, err := portaudio.OpenDefaultStream(0, 1, engine.BaseSampleRate, len(outBuf), &outBuf)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	var nSamples int
	err = h.Encode(func(data []byte) {
		for i := 0; i+3 < len(data); i += 4 {
			bits := binary.LittleEndian.Uint32(data[i : i+4])
			v := math.Float32frombits(bits)

			pos := nSamples % len(outBuf)
			outBuf[pos] = v
			nSamples++
			if pos == len(outBuf)-1 {
				if werr := stream.Write(); werr != nil {
					logger.Warn("playback write failed", "err", werr)
				}
			}
		}
	})
	if err != nil {
		return err
	}

	if rem := nSamples % len(outBuf); rem != 0 {
		for i := rem; i < len(outBuf); i++ {
			outBuf[i] = 0
		}
		if werr := stream.Write(); werr != nil {
			logger.Warn("playback write failed", "err", werr)
		}
	}

	logger.Info("encoded samples", "count", nSamples)
	return nil
}

func runListen(logger *log.Logger) error {
	params := engine.DefaultParameters()
	params.SampleFormatIn = engine.SampleFormatF32
	params.Logger = engine.NewLogger(logger)

	h, err := engine.NewHandle(params)
	if err != nil {
		return err
	}
	defer h.Free()

	frame := make([]float32, params.SamplesPerFrame)
	stream, err := portaudio.OpenDefaultStream(1, 0, engine.BaseSampleRate, len(frame), frame)
	if err != nil {
		return err
	}
	defer stream.Close()

	if err := stream.Start(); err != nil {
		return err
	}
	defer stream.Stop()

	logger.Info("listening for a message, press ctrl-c to stop")
	for {
		if err := stream.Read(); err != nil {
			return err
		}

		buf := make([]byte, 4*len(frame))
		for i, v := range frame {
			binary.LittleEndian.PutUint32(buf[4*i:], math.Float32bits(v))
		}
		offset := 0
		if err := h.Decode(func(dst []byte) int {
			n := copy(dst, buf[offset:])
			offset += n
			return n
		}); err != nil {
			logger.Warn("decode error", "err", err)
			continue
		}

		payload, n, err := h.TakeRxData()
		if err != nil {
			logger.Warn("could not correct received data")
			continue
		}
		if n > 0 {
			logger.Info("received message", "text", string(payload))
		}
	}
}
