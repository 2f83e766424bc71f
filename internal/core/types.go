package core

import "sanctuarycore/pkg/domain"

type (
	EntityType         = domain.EntityType
	DietaryRole        = domain.DietaryRole
	KeeperRole         = domain.KeeperRole
	Severity           = domain.Severity
	Animal             = domain.Animal
	Keeper             = domain.Keeper
	Cage               = domain.Cage
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RulesEngine        = domain.RulesEngine
	RuleViolationError = domain.RuleViolationError
	KeeperConstraints  = domain.KeeperConstraints
	AnimalRules        = domain.AnimalRules
	SettingsProvider   = domain.SettingsProvider
)

const (
	EntityAnimal = domain.EntityAnimal
	EntityKeeper = domain.EntityKeeper
	EntityCage   = domain.EntityCage
)

const (
	RolePredator = domain.RolePredator
	RolePrey     = domain.RolePrey
)

const (
	RoleHeadKeeper      = domain.RoleHeadKeeper
	RoleAssistantKeeper = domain.RoleAssistantKeeper
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)
