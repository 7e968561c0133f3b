package metrics

import (
	"github.com/rileyhilliard/vitals/internal/logger"
)

// GPUSampler is a vendor-specific GPU telemetry source.
type GPUSampler interface {
	Sampler
	Vendor() string
}

// DetectGPU probes once at startup for a supported GPU and returns nil
// when none is found. NVIDIA wins when nvidia-smi is installed; there is
// no cross-vendor fallback at runtime, so a present-but-broken driver
// surfaces as a failing sampler instead of silently switching cards.
func DetectGPU(log logger.Logger) GPUSampler {
	if nv := detectNvidiaGPU(); nv != nil {
		log.Debug("gpu: sampling via nvidia-smi")
		return nv
	}
	if intel := detectIntelGPU(drmClassDir); intel != nil {
		log.Debug("gpu: sampling intel card at %s", intel.cardPath)
		return intel
	}
	log.Debug("gpu: no supported card detected")
	return nil
}
