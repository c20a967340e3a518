package models

// All lists every persisted entity in dependency order.
func All() []any {
	return []any{
		&Weapon{},
		&Element{},
		&Region{},
		&Character{},
		&User{},
		&UserCharacter{},
		&Set{},
		&Stat{},
		&Artifact{},
		&ArtifactSubStat{},
	}
}
