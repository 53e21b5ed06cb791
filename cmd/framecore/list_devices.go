package main

import (
	"bytes"
	"fmt"

	"github.com/urfave/cli"

	"github.com/vkngwrapper/framecore/internal/device"
	"github.com/vkngwrapper/framecore/internal/vulkan"
	"github.com/vkngwrapper/framecore/internal/window"
)

// ListDevices prints every adapter, its score and why it is ineligible.
func ListDevices(ctx *cli.Context) error {
	setupLogging(ctx)

	// Presentation support is a property of a surface, so a window is needed.
	win, err := window.NewSDL("framecore", 320, 240)
	if err != nil {
		return err
	}
	defer win.Destroy()

	instance, err := vulkan.NewInstance(win, vulkan.InstanceOptions{
		ApplicationName: "framecore",
		Validation:      ctx.Bool("validation"),
	})
	if err != nil {
		return err
	}
	defer instance.Destroy()

	adapters, err := instance.Adapters()
	if err != nil {
		return err
	}

	ratings := device.Rate(adapters, requiredFeatures)

	var storage []byte
	buf := bytes.NewBuffer(storage)
	buf.WriteString(fmt.Sprintf("\nSystem provides %d vulkan device(s):\n\n", len(ratings)))
	for idx, rating := range ratings {
		buf.WriteString(describeRating(idx, rating))
	}

	fmt.Print(buf.String())
	return nil
}

func describeRating(idx int, rating device.Rating) string {
	props := rating.Adapter.Properties()

	queues := "incomplete"
	indices, err := device.FindQueueFamilies(rating.Adapter)
	if err != nil {
		queues = err.Error()
	} else if indices.IsComplete() {
		queues = fmt.Sprintf("graphics %d, present %d", *indices.GraphicsFamily, *indices.PresentFamily)
	}

	eligible := "yes"
	if rating.Score == 0 {
		eligible = fmt.Sprintf("no, missing %v", rating.Missing)
	}

	return fmt.Sprintf("[Device %02d]\n  Name     %s\n  Type     %s\n  Score    %d\n  Queues   %s\n  Samples  %d\n  Eligible %s\n\n",
		idx, props.Name, props.Type, rating.Score, queues, device.MaxUsableSampleCount(props), eligible)
}
