package pipeline

import (
	"bytes"
	"fmt"

	"github.com/mengelbart/pipemod"
)

// writeInfo prints the clip report. Audio fields are included only when
// withAudio is set.
func (d *Driver) writeInfo(c pipemod.Clip, withAudio bool) error {
	var b bytes.Buffer
	fmt.Fprintf(&b, "\nscript_name      %s\n\n", d.ScriptName)

	if vi := c.VideoInfo(); vi.HasVideo() {
		desc := vi.Descriptor()
		imageType := "framebased"
		if vi.FieldBased {
			imageType = "fieldbased"
		}
		fmt.Fprintf(&b, "v:width          %d\n", vi.Width)
		fmt.Fprintf(&b, "v:height         %d\n", vi.Height)
		fmt.Fprintf(&b, "v:image_type     %s\n", imageType)
		fmt.Fprintf(&b, "v:field_order    %s\n", vi.FieldOrder)
		fmt.Fprintf(&b, "v:pixel_type     %s\n", desc.Name)
		fmt.Fprintf(&b, "v:bit_depth      %d\n", desc.BytesPerSample*8)
		fmt.Fprintf(&b, "v:fps            %d/%d\n", vi.FPSNum, vi.FPSDen)
		fmt.Fprintf(&b, "v:frames         %d\n", vi.NumFrames)
		fmt.Fprintf(&b, "v:duration[sec]  %.3f\n\n", vi.Duration())
	}

	if ai := c.AudioInfo(); ai.HasAudio() && withAudio {
		format := "integer"
		if ai.SampleType.IsFloat() {
			format = "float"
		}
		fmt.Fprintf(&b, "a:sample_rate    %d\n", ai.SampleRate)
		fmt.Fprintf(&b, "a:format         %s\n", format)
		fmt.Fprintf(&b, "a:bit_depth      %d\n", ai.BytesPerChannelSample()*8)
		fmt.Fprintf(&b, "a:channels       %d\n", ai.Channels)
		fmt.Fprintf(&b, "a:samples        %d\n", ai.NumSamples)
		fmt.Fprintf(&b, "a:duration[sec]  %.3f\n\n", ai.Duration())
	}

	_, err := d.Stdout.Write(b.Bytes())
	return err
}
