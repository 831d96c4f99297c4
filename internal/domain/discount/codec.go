package discount

import (
	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"github.com/shopspring/decimal"
)

// DecodeConfig parses the persisted discount configuration blob. Tiers and
// thresholds are normalized (sorted ascending by breakpoint) on the way in,
// so strategies can rely on ordering. Structural validity beyond JSON shape
// is the caller's concern via Config.Validate.
func DecodeConfig(data []byte) (Config, error) {
	var cfg Config

	d := jx.DecodeBytes(data)
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "discount_type":
			s, err := d.Str()
			if err != nil {
				return errors.Wrap(err, "discount_type")
			}
			cfg.Type = Type(s)
			return nil
		case "discount_value":
			v, err := decodeDecimal(d)
			if err != nil {
				return errors.Wrap(err, "discount_value")
			}
			cfg.Value = v
			return nil
		case "tiers":
			return d.Arr(func(d *jx.Decoder) error {
				t, err := decodeTier(d)
				if err != nil {
					return errors.Wrap(err, "tiers")
				}
				cfg.Tiers = append(cfg.Tiers, t)
				return nil
			})
		case "thresholds":
			return d.Arr(func(d *jx.Decoder) error {
				t, err := decodeThreshold(d)
				if err != nil {
					return errors.Wrap(err, "thresholds")
				}
				cfg.Thresholds = append(cfg.Thresholds, t)
				return nil
			})
		case "buy_quantity":
			n, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "buy_quantity")
			}
			cfg.BuyQuantity = n
			return nil
		case "get_quantity":
			n, err := d.Int()
			if err != nil {
				return errors.Wrap(err, "get_quantity")
			}
			cfg.GetQuantity = n
			return nil
		case "get_discount_percentage":
			v, err := decodeDecimal(d)
			if err != nil {
				return errors.Wrap(err, "get_discount_percentage")
			}
			cfg.GetDiscountPercent = v
			return nil
		default:
			return d.Skip()
		}
	})
	if err != nil {
		return Config{}, errors.Wrap(err, "decode discount config")
	}

	cfg.Normalize()
	return cfg, nil
}

// EncodeConfig serializes the configuration into the persisted blob format,
// emitting only the active variant's fields.
func EncodeConfig(cfg Config) []byte {
	var e jx.Encoder
	e.ObjStart()
	e.FieldStart("discount_type")
	e.Str(string(cfg.Type))

	switch cfg.Type {
	case TypePercentage, TypeFixed:
		e.FieldStart("discount_value")
		encodeDecimal(&e, cfg.Value)
	case TypeTiered:
		e.FieldStart("tiers")
		e.ArrStart()
		for _, t := range cfg.Tiers {
			e.ObjStart()
			e.FieldStart("min_quantity")
			e.Int(t.MinQuantity)
			e.FieldStart("discount_value")
			encodeDecimal(&e, t.Value)
			e.FieldStart("discount_type")
			e.Str(string(t.Type))
			e.ObjEnd()
		}
		e.ArrEnd()
	case TypeSpendThreshold:
		e.FieldStart("thresholds")
		e.ArrStart()
		for _, t := range cfg.Thresholds {
			e.ObjStart()
			e.FieldStart("spend_amount")
			encodeDecimal(&e, t.SpendAmount)
			e.FieldStart("discount_value")
			encodeDecimal(&e, t.Value)
			e.FieldStart("discount_type")
			e.Str(string(t.Type))
			e.ObjEnd()
		}
		e.ArrEnd()
	case TypeBogo:
		e.FieldStart("buy_quantity")
		e.Int(cfg.BuyQuantity)
		e.FieldStart("get_quantity")
		e.Int(cfg.GetQuantity)
		e.FieldStart("get_discount_percentage")
		encodeDecimal(&e, cfg.GetDiscountPercent)
	}

	e.ObjEnd()
	return e.Bytes()
}

func decodeTier(d *jx.Decoder) (Tier, error) {
	var t Tier
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "min_quantity":
			n, err := d.Int()
			t.MinQuantity = n
			return err
		case "discount_value":
			v, err := decodeDecimal(d)
			t.Value = v
			return err
		case "discount_type":
			s, err := d.Str()
			t.Type = Type(s)
			return err
		default:
			return d.Skip()
		}
	})
	return t, err
}

func decodeThreshold(d *jx.Decoder) (Threshold, error) {
	var t Threshold
	err := d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "spend_amount":
			v, err := decodeDecimal(d)
			t.SpendAmount = v
			return err
		case "discount_value":
			v, err := decodeDecimal(d)
			t.Value = v
			return err
		case "discount_type":
			s, err := d.Str()
			t.Type = Type(s)
			return err
		default:
			return d.Skip()
		}
	})
	return t, err
}

func decodeDecimal(d *jx.Decoder) (decimal.Decimal, error) {
	n, err := d.Num()
	if err != nil {
		return decimal.Decimal{}, err
	}
	return decimal.NewFromString(n.String())
}

func encodeDecimal(e *jx.Encoder, v decimal.Decimal) {
	e.Num(jx.Num(v.String()))
}
