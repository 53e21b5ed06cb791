package device

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/framecore/internal/gpu"
	"github.com/vkngwrapper/framecore/internal/log"
)

const discreteBonus = 1000

var logger = log.New("device")

var (
	ErrNoAdapters              = errors.New("no adapters available")
	ErrNoSuitableAdapter       = errors.New("failed to find a suitable GPU")
	ErrQueueFamiliesIncomplete = errors.New("adapter lacks a graphics or presentation queue family")
)

// DefaultRequiredFeatures is the mandatory feature set an adapter must expose.
var DefaultRequiredFeatures = gpu.NewFeatures(gpu.GeometryShader, gpu.SamplerAnisotropy)

// Score rates an adapter. Discrete adapters get a fixed bonus on top of their
// maximum 2D image dimension; an adapter missing any required feature scores 0.
func Score(properties gpu.AdapterProperties, features gpu.Features, required gpu.Features) int {
	if !features.Contains(required) {
		return 0
	}

	score := properties.MaxImageDimension2D
	if properties.Type == gpu.AdapterDiscrete {
		score += discreteBonus
	}

	return score
}

// Rating is the evaluation of one adapter.
type Rating struct {
	Adapter gpu.Adapter
	Score   int
	Missing []gpu.Feature
}

func Rate(adapters []gpu.Adapter, required gpu.Features) []Rating {
	ratings := make([]Rating, 0, len(adapters))
	for _, adapter := range adapters {
		features := adapter.Features()
		ratings = append(ratings, Rating{
			Adapter: adapter,
			Score:   Score(adapter.Properties(), features, required),
			Missing: features.Missing(required),
		})
	}
	return ratings
}

// SelectAdapter picks the highest scoring adapter. Ties go to the adapter
// enumerated first.
func SelectAdapter(adapters []gpu.Adapter, required gpu.Features) (gpu.Adapter, error) {
	if len(adapters) == 0 {
		return nil, errors.Mark(ErrNoAdapters, gpu.ErrFatalInit)
	}

	bestScore := 0
	var bestAdapter gpu.Adapter

	for _, rating := range Rate(adapters, required) {
		properties := rating.Adapter.Properties()
		if rating.Score == 0 {
			logger.Infof("adapter %q excluded, missing %v", properties.Name, rating.Missing)
			continue
		}

		logger.Debugf("adapter %q (%s) scored %d", properties.Name, properties.Type, rating.Score)
		if rating.Score > bestScore {
			bestScore = rating.Score
			bestAdapter = rating.Adapter
		}
	}

	if bestAdapter == nil {
		return nil, errors.Mark(ErrNoSuitableAdapter, gpu.ErrFatalInit)
	}

	logger.Infof("selected adapter %q with score %d", bestAdapter.Properties().Name, bestScore)
	return bestAdapter, nil
}

// FindQueueFamilies records the first graphics-capable family and the first
// family that can present to the bound surface, stopping once both are found.
func FindQueueFamilies(adapter gpu.Adapter) (gpu.QueueFamilyIndices, error) {
	indices := gpu.QueueFamilyIndices{}

	for queueFamilyIdx, queueFamily := range adapter.QueueFamilies() {
		if indices.GraphicsFamily == nil && queueFamily.QueueCount > 0 && queueFamily.Graphics {
			indices.GraphicsFamily = new(int)
			*indices.GraphicsFamily = queueFamilyIdx
		}

		if indices.PresentFamily == nil {
			supported, err := adapter.SupportsPresent(queueFamilyIdx)
			if err != nil {
				return indices, errors.Wrapf(err, "query presentation support of queue family %d", queueFamilyIdx)
			}

			if supported {
				indices.PresentFamily = new(int)
				*indices.PresentFamily = queueFamilyIdx
			}
		}

		if indices.IsComplete() {
			break
		}
	}

	return indices, nil
}

// MaxUsableSampleCount returns the highest sample count supported by both the
// color and depth framebuffer attachments.
func MaxUsableSampleCount(properties gpu.AdapterProperties) gpu.SampleCounts {
	counts := properties.ColorSampleCounts & properties.DepthSampleCounts

	for _, samples := range []gpu.SampleCounts{
		gpu.Samples64, gpu.Samples32, gpu.Samples16, gpu.Samples8, gpu.Samples4, gpu.Samples2,
	} {
		if counts&samples != 0 {
			return samples
		}
	}
	return gpu.Samples1
}
