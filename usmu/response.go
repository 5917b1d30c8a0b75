package usmu

import (
	"fmt"

	"github.com/microvolt/go-usmu/scpi"
	"github.com/microvolt/go-usmu/unit"
)

// identityBanner is the literal prefix of every *IDN? reply.
const identityBanner = "uSMU version 1.0 ID:"

// Response is one decoded reply line. The concrete type depends on the
// [ResponseShape] of the command that produced it.
type Response interface {
	isResponse()
}

// EmptyResponse is the explicit acknowledgement of a command with no reply
// payload.
type EmptyResponse struct{}

// MeasureResponse carries the measured voltage and current of a Measure
// command. The voltage is the ADC read-back and may differ slightly from the
// commanded set-point.
type MeasureResponse struct {
	Voltage unit.Voltage
	Current unit.Current
}

// ValueResponse carries the raw unsigned value of a differential conversion.
type ValueResponse struct {
	Value uint16
}

// FloatResponse carries the float stored at an EEPROM address.
type FloatResponse struct {
	Value float32
}

// IdentityResponse carries the device id from the identity banner.
type IdentityResponse struct {
	UID uint32
}

func (EmptyResponse) isResponse()    {}
func (MeasureResponse) isResponse()  {}
func (ValueResponse) isResponse()    {}
func (FloatResponse) isResponse()    {}
func (IdentityResponse) isResponse() {}

// DecodeResponse parses one reply line, including its trailing terminator,
// into the typed response for shape.
//
// Decoding consumes the entire line: the terminator must be present and no
// bytes may remain after it.
func DecodeResponse(shape ResponseShape, line string) (Response, error) {
	cur := scpi.NewCursor(line)

	var resp Response

	switch shape {
	case RespEmpty:
		resp = EmptyResponse{}

	case RespMeasurement:
		volts, err := cur.Float32()
		if err != nil {
			return nil, err
		}
		if err := cur.MatchLiteral(","); err != nil {
			return nil, err
		}
		amps, err := cur.Float32()
		if err != nil {
			return nil, err
		}
		resp = MeasureResponse{Voltage: unit.Volts(volts), Current: unit.Amperes(amps)}

	case RespUint:
		value, err := cur.Uint(16)
		if err != nil {
			return nil, err
		}
		resp = ValueResponse{Value: uint16(value)}

	case RespFloat:
		value, err := cur.Float32()
		if err != nil {
			return nil, err
		}
		resp = FloatResponse{Value: value}

	case RespIdentity:
		if err := cur.MatchLiteral(identityBanner); err != nil {
			return nil, err
		}
		uid, err := cur.Uint(32)
		if err != nil {
			return nil, err
		}
		resp = IdentityResponse{UID: uint32(uid)}

	default:
		return nil, fmt.Errorf("%w: unknown response shape %d", ErrConfiguration, shape)
	}

	if err := cur.MatchLiteral(scpi.Terminator); err != nil {
		return nil, err
	}
	if err := cur.Empty(); err != nil {
		return nil, err
	}

	return resp, nil
}
