package service

import (
	"fmt"

	"github.com/fsdevblog/minegrid/pkg/uow"
)

type AppServices struct {
	UserService         *UserService
	CatalogService      *CatalogService
	MinerService        *MinerService
	WithdrawalService   *WithdrawalService
	NotificationService *NotificationService
}

func Factory(unitOfWork uow.UOW, jwtSecret []byte) (*AppServices, error) {
	userService, userServiceErr := NewUserService(unitOfWork, jwtSecret)
	if userServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", userServiceErr.Error())
	}

	catalogService, catalogServiceErr := NewCatalogService(unitOfWork)
	if catalogServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", catalogServiceErr.Error())
	}

	minerService, minerServiceErr := NewMinerService(unitOfWork)
	if minerServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", minerServiceErr.Error())
	}

	withdrawalService, withdrawalServiceErr := NewWithdrawalService(unitOfWork)
	if withdrawalServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", withdrawalServiceErr.Error())
	}

	notificationService, notificationServiceErr := NewNotificationService(unitOfWork)
	if notificationServiceErr != nil {
		return nil, fmt.Errorf("service factory: %s", notificationServiceErr.Error())
	}

	return &AppServices{
		UserService:         userService,
		CatalogService:      catalogService,
		MinerService:        minerService,
		WithdrawalService:   withdrawalService,
		NotificationService: notificationService,
	}, nil
}
