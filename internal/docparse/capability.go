package docparse

// Capability records whether an optional extractor can be used and, if not,
// why.
type Capability struct {
	Available bool
	Reason    string
}

// Capabilities is decided once at startup and handed to New.
type Capabilities struct {
	PDF  Capability
	DOCX Capability
}

// CapabilityOptions lets operators switch extractors off.
type CapabilityOptions struct {
	DisablePDF  bool
	DisableDOCX bool
}

// DetectCapabilities probes each extractor against a tiny known-good sample
// so a broken build or a disabled feature is reported at startup rather than
// on the first upload.
func DetectCapabilities(opts CapabilityOptions) Capabilities {
	return Capabilities{
		PDF:  probe(opts.DisablePDF, "pdf extraction disabled by configuration", PDFExtractor{}, probePDF()),
		DOCX: probe(opts.DisableDOCX, "docx extraction disabled by configuration", DOCXExtractor{}, probeDOCX()),
	}
}

func probe(disabled bool, disabledReason string, ex TextExtractor, sample []byte) Capability {
	if disabled {
		return Capability{Reason: disabledReason}
	}
	if _, err := ex.ExtractText(sample); err != nil {
		return Capability{Reason: "self-check failed: " + err.Error()}
	}
	return Capability{Available: true}
}
