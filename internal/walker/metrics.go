package walker

import (
	"github.com/prometheus/client_golang/prometheus"
)

type metrics struct {
	registry              *prometheus.Registry
	filesTotal            *prometheus.CounterVec
	fileDuration          prometheus.Histogram
	originalsCopiedTotal  prometheus.Counter
	copyFailuresTotal     prometheus.Counter
	augmentedOutputsTotal *prometheus.CounterVec
	encodedBytes          prometheus.Histogram
	mirrorFailuresTotal   prometheus.Counter
	discoveredImagesTotal prometheus.Counter
}

func newMetrics() *metrics {
	registry := prometheus.NewRegistry()

	m := &metrics{
		registry: registry,
		filesTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelaug_files_total",
			Help: "Source images processed by final outcome.",
		}, []string{"outcome"}),
		fileDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelaug_file_duration_seconds",
			Help:    "Time spent copying and augmenting one source image.",
			Buckets: prometheus.DefBuckets,
		}),
		originalsCopiedTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelaug_originals_copied_total",
			Help: "Original images copied into the output tree.",
		}),
		copyFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelaug_copy_failures_total",
			Help: "Original images that could not be copied.",
		}),
		augmentedOutputsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "pixelaug_augmented_outputs_total",
			Help: "Augmented files written, by variant tag.",
		}, []string{"variant"}),
		encodedBytes: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "pixelaug_encoded_bytes",
			Help:    "Size of each encoded augmentation.",
			Buckets: prometheus.ExponentialBuckets(1024, 4, 8),
		}),
		mirrorFailuresTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelaug_mirror_failures_total",
			Help: "Outputs that could not be mirrored to the object store.",
		}),
		discoveredImagesTotal: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "pixelaug_discovered_images_total",
			Help: "Recognized images found under the input root.",
		}),
	}

	registry.MustRegister(
		m.filesTotal,
		m.fileDuration,
		m.originalsCopiedTotal,
		m.copyFailuresTotal,
		m.augmentedOutputsTotal,
		m.encodedBytes,
		m.mirrorFailuresTotal,
		m.discoveredImagesTotal,
	)
	return m
}

// writeTextfile dumps the registry in the node-exporter textfile format.
func (m *metrics) writeTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
