package recording

import "github.com/saw4405/splat-replay/internal/domain/model"

// MetadataMerger reconciles automatic detections with manual edits using
// the three-way rule of spec §4.D: a manually edited field always wins;
// otherwise an automatic change is adopted only if the current value
// still matches the pre-merge base (i.e. nothing else already moved it).
type MetadataMerger struct{}

// NewMetadataMerger returns a stateless MetadataMerger.
func NewMetadataMerger() *MetadataMerger { return &MetadataMerger{} }

// Merge applies the per-field three-way rule. manualFields names the
// top-level and result-subfield fields the user has directly edited.
func (MetadataMerger) Merge(base, autoUpdate, current model.RecordingMetadata, manualFields map[string]bool) model.RecordingMetadata {
	out := current

	out = out.WithGameMode(pick3(manualFields, model.FieldGameMode, base.GameMode, autoUpdate.GameMode, current.GameMode))

	if manualFields[model.FieldStartedAt] {
		out = out.WithStartedAt(current.StartedAt)
	} else if !model.TimePtrEqual(autoUpdate.StartedAt, base.StartedAt) && model.TimePtrEqual(current.StartedAt, base.StartedAt) {
		out = out.WithStartedAt(autoUpdate.StartedAt)
	} else {
		out = out.WithStartedAt(current.StartedAt)
	}

	if manualFields[model.FieldRate] {
		out = out.WithRate(current.Rate)
	} else if !model.RatePtrEqual(autoUpdate.Rate, base.Rate) && model.RatePtrEqual(current.Rate, base.Rate) {
		out = out.WithRate(autoUpdate.Rate)
	} else {
		out = out.WithRate(current.Rate)
	}

	out = out.WithJudgement(model.Judgement(pick3(manualFields, model.FieldJudgement, string(base.Judgement), string(autoUpdate.Judgement), string(current.Judgement))))

	if manualFields[model.FieldAllies] {
		out = out.WithAlliesPtr(current.Allies)
	} else if !model.WeaponsPtrEqual(autoUpdate.Allies, base.Allies) && model.WeaponsPtrEqual(current.Allies, base.Allies) {
		out = out.WithAlliesPtr(autoUpdate.Allies)
	} else {
		out = out.WithAlliesPtr(current.Allies)
	}

	if manualFields[model.FieldEnemies] {
		out = out.WithEnemiesPtr(current.Enemies)
	} else if !model.WeaponsPtrEqual(autoUpdate.Enemies, base.Enemies) && model.WeaponsPtrEqual(current.Enemies, base.Enemies) {
		out = out.WithEnemiesPtr(autoUpdate.Enemies)
	} else {
		out = out.WithEnemiesPtr(current.Enemies)
	}

	out = out.WithResult(mergeResult(base.Result, autoUpdate.Result, current.Result, manualFields))
	return out
}

// pick3 implements the 3-way textual rule for a scalar field named f.
func pick3(manualFields map[string]bool, f, base, autoUpdate, current string) string {
	if manualFields[f] {
		return current
	}
	if autoUpdate != base && current == base {
		return autoUpdate
	}
	return current
}

// mergeResult applies the field-by-field rule to the Result sub-object,
// honoring the variant-change carve-out of spec §4.D: a BATTLE<->SALMON
// switch is adopted wholesale from autoUpdate unless any result subfield
// is already in manualFields, in which case current is kept entirely.
func mergeResult(base, autoUpdate, current model.Result, manualFields map[string]bool) model.Result {
	variantChanged := resultVariant(autoUpdate) != resultVariant(base) && autoUpdate.Present
	anyManualResultField := false
	for f := range model.BattleFields {
		if manualFields[f] {
			anyManualResultField = true
			break
		}
	}
	if !anyManualResultField {
		for f := range model.SalmonFields {
			if manualFields[f] {
				anyManualResultField = true
				break
			}
		}
	}

	if variantChanged {
		if anyManualResultField {
			return current
		}
		return autoUpdate
	}

	if !current.Present && !autoUpdate.Present {
		return current
	}
	if !base.Present && autoUpdate.Present && !current.Present {
		return autoUpdate
	}

	switch {
	case current.Battle != nil:
		merged := *current.Battle
		bb := model.BattleResult{}
		if base.Battle != nil {
			bb = *base.Battle
		}
		ab := model.BattleResult{}
		if autoUpdate.Battle != nil {
			ab = *autoUpdate.Battle
		}
		merged.Match = model.Match(pick3(manualFields, "match", string(bb.Match), string(ab.Match), string(merged.Match)))
		merged.Rule = model.Rule(pick3(manualFields, "rule", string(bb.Rule), string(ab.Rule), string(merged.Rule)))
		merged.Stage = model.Stage(pick3(manualFields, "stage", string(bb.Stage), string(ab.Stage), string(merged.Stage)))
		merged.Kill = pick3Int(manualFields, "kill", bb.Kill, ab.Kill, merged.Kill)
		merged.Death = pick3Int(manualFields, "death", bb.Death, ab.Death, merged.Death)
		merged.Special = pick3Int(manualFields, "special", bb.Special, ab.Special, merged.Special)
		return model.BattleOf(merged)
	case current.Salmon != nil:
		merged := *current.Salmon
		bs := model.SalmonResult{}
		if base.Salmon != nil {
			bs = *base.Salmon
		}
		as := model.SalmonResult{}
		if autoUpdate.Salmon != nil {
			as = *autoUpdate.Salmon
		}
		merged.Hazard = pick3Int(manualFields, "hazard", bs.Hazard, as.Hazard, merged.Hazard)
		merged.Stage = model.Stage(pick3(manualFields, "stage", string(bs.Stage), string(as.Stage), string(merged.Stage)))
		merged.GoldenEgg = pick3Int(manualFields, "golden_egg", bs.GoldenEgg, as.GoldenEgg, merged.GoldenEgg)
		merged.PowerEgg = pick3Int(manualFields, "power_egg", bs.PowerEgg, as.PowerEgg, merged.PowerEgg)
		merged.Rescue = pick3Int(manualFields, "rescue", bs.Rescue, as.Rescue, merged.Rescue)
		merged.Rescued = pick3Int(manualFields, "rescued", bs.Rescued, as.Rescued, merged.Rescued)
		return model.SalmonOf(merged)
	default:
		return current
	}
}

func pick3Int(manualFields map[string]bool, f string, base, autoUpdate, current int) int {
	if manualFields[f] {
		return current
	}
	if autoUpdate != base && current == base {
		return autoUpdate
	}
	return current
}

func resultVariant(r model.Result) string {
	switch {
	case r.Battle != nil:
		return "battle"
	case r.Salmon != nil:
		return "salmon"
	default:
		return ""
	}
}
