package metadata

type PipelineKind int

const (
	PipelineKindMesh PipelineKind = iota
	PipelineKindHair
	PipelineKindSkybox
	PipelineKindOverlay
)

func (k PipelineKind) String() string {
	switch k {
	case PipelineKindMesh:
		return "mesh"
	case PipelineKindHair:
		return "hair"
	case PipelineKindSkybox:
		return "skybox"
	case PipelineKindOverlay:
		return "overlay"
	}
	return "unknown"
}

type FaceCullMode int

const (
	FaceCullModeNone FaceCullMode = iota
	FaceCullModeFront
	FaceCullModeBack
	FaceCullModeFrontAndBack
)
