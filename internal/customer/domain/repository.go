package domain

import (
	"github.com/smallbiznis/birracraft/pkg/repository"
)

type Repository = repository.Repository[Customer]
