// Package gstreamer decodes arbitrary media files with GStreamer and
// exposes the decoded video as a pipemod clip.
package gstreamer

import (
	"fmt"

	"github.com/go-gst/go-gst/gst"
)

func SetProperties(e *gst.Element, pp map[string]any) error {
	for k, v := range pp {
		if err := e.SetProperty(k, v); err != nil {
			return err
		}
	}
	return nil
}

// busError drains the pipeline bus and returns the first error message
// found on it, if any.
func busError(pipeline *gst.Pipeline) error {
	bus := pipeline.GetPipelineBus()
	for {
		msg := bus.Pop()
		if msg == nil {
			return nil
		}
		if msg.Type() != gst.MessageError {
			continue
		}
		gerr := msg.ParseError()
		if debug := gerr.DebugString(); debug != "" {
			return fmt.Errorf("gstreamer: %v (%v)", gerr.Error(), debug)
		}
		return fmt.Errorf("gstreamer: %v", gerr.Error())
	}
}
