package sei

import (
	"testing"

	"github.com/stretchr/testify/require"
)

// prefix SEI NAL unit header (HEVC type 39)
var seiHeader = []byte{0x4E, 0x01}

var mdcvPayload = []byte{
	// display primaries, G/B/R (BT.2020)
	0x21, 0x34, 0x9B, 0xAA,
	0x19, 0x96, 0x08, 0xFC,
	0x8A, 0x48, 0x39, 0x08,
	// white point (D65)
	0x3D, 0x13, 0x40, 0x42,
	// max luminance (1000 cd/m2)
	0x00, 0x98, 0x96, 0x80,
	// min luminance (0.005 cd/m2)
	0x00, 0x00, 0x00, 0x32,
}

var cllPayload = []byte{0x03, 0xE8, 0x01, 0x90}

var hdr10PlusPayload = []byte{
	0xB5,       // itu_t_t35_country_code
	0x00, 0x3C, // terminal_provider_code
	0x00, 0x01, // terminal_provider_oriented_code
	0x04, // application_identifier
	0x01, // application_version
	0xAA, 0xBB, 0xCC,
}

func TestUnmarshal(t *testing.T) {
	nalu := Marshal(seiHeader, []Message{
		{PayloadType: PayloadTypeMasteringDisplayColourVolume, Payload: mdcvPayload},
		{PayloadType: PayloadTypeContentLightLevel, Payload: cllPayload},
		{PayloadType: PayloadTypeUserDataRegistered, Payload: hdr10PlusPayload},
	})

	msgs, err := Unmarshal(nalu)
	require.NoError(t, err)
	require.Equal(t, []Message{
		{PayloadType: PayloadTypeMasteringDisplayColourVolume, Payload: mdcvPayload},
		{PayloadType: PayloadTypeContentLightLevel, Payload: cllPayload},
		{PayloadType: PayloadTypeUserDataRegistered, Payload: hdr10PlusPayload},
	}, msgs)

	var mdcv MasteringDisplayColourVolume
	require.NoError(t, mdcv.Unmarshal(msgs[0].Payload))
	require.Equal(t, uint32(10000000), mdcv.MaxDisplayMasteringLuminance)
	require.Equal(t, uint32(50), mdcv.MinDisplayMasteringLuminance)
	require.Equal(t, "BT.2020", mdcv.PrimariesText())

	var cll ContentLightLevel
	require.NoError(t, cll.Unmarshal(msgs[1].Payload))
	require.Equal(t, uint16(1000), cll.MaxContentLightLevel)
	require.Equal(t, uint16(400), cll.MaxFrameAverageLightLevel)

	require.True(t, IsHDR10Plus(msgs[2].Payload))
}

func TestUnmarshalEmulationPrevention(t *testing.T) {
	// the zero run in the payload gets an emulation prevention byte on
	// marshal and loses it on unmarshal
	payload := []byte{0xB5, 0x00, 0x00, 0x01, 0x02}
	nalu := Marshal(seiHeader, []Message{
		{PayloadType: PayloadTypeUserDataRegistered, Payload: payload},
	})
	require.Equal(t, []byte{
		0x4E, 0x01,
		0x04, 0x05,
		0xB5, 0x00, 0x00, 0x03, 0x01, 0x02,
		0x80,
	}, nalu)

	msgs, err := Unmarshal(nalu)
	require.NoError(t, err)
	require.Equal(t, []Message{
		{PayloadType: PayloadTypeUserDataRegistered, Payload: payload},
	}, msgs)
}

func TestUnmarshalTooShort(t *testing.T) {
	_, err := Unmarshal([]byte{0x4E})
	require.Error(t, err)
}

func TestFind(t *testing.T) {
	msgs := []Message{
		{PayloadType: PayloadTypeMasteringDisplayColourVolume, Payload: mdcvPayload},
		{PayloadType: PayloadTypeContentLightLevel, Payload: cllPayload},
		{PayloadType: PayloadTypeUserDataRegistered, Payload: hdr10PlusPayload},
	}

	require.NotNil(t, FindMasteringDisplayColourVolume(msgs))
	require.NotNil(t, FindContentLightLevel(msgs))
	require.Equal(t, hdr10PlusPayload, FindHDR10Plus(msgs))

	require.Nil(t, FindMasteringDisplayColourVolume(nil))
	require.Nil(t, FindContentLightLevel(nil))
	require.Nil(t, FindHDR10Plus(nil))
}

func TestRemoveHDR10Plus(t *testing.T) {
	nalu := Marshal(seiHeader, []Message{
		{PayloadType: PayloadTypeContentLightLevel, Payload: cllPayload},
		{PayloadType: PayloadTypeUserDataRegistered, Payload: hdr10PlusPayload},
	})

	out, err := RemoveHDR10Plus(nalu)
	require.NoError(t, err)
	require.Equal(t, Marshal(seiHeader, []Message{
		{PayloadType: PayloadTypeContentLightLevel, Payload: cllPayload},
	}), out)

	// nothing remains
	only := Marshal(seiHeader, []Message{
		{PayloadType: PayloadTypeUserDataRegistered, Payload: hdr10PlusPayload},
	})
	out, err = RemoveHDR10Plus(only)
	require.NoError(t, err)
	require.Nil(t, out)
}
