package decoders

import "github.com/kb9vcn/rf433recv/internal/decoder"

// Register populates reg with every decoder in the supported roster, in
// the order they are tried against each burst. Order does not affect
// correctness -- decoders never see each other's output -- but a stable
// order keeps diagnostic output reproducible across runs.
func Register(reg *decoder.Registry) {
	reg.Register(AlectoV1Descriptor())
	reg.Register(LaCrosseTX141Descriptor())
	reg.Register(ThermoProTP12Descriptor())
	reg.Register(PrologueDescriptor())
	reg.Register(EfergyE2ClassicDescriptor())
	reg.Register(WattsWFHTDescriptor())
	reg.Register(FixedCodeRemoteDescriptor())
	reg.Register(GenericTPMSDescriptor())
}
