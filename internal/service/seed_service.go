package service

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/jmoiron/sqlx"

	"github.com/b2bid/bidding-backend/internal/models"
	"github.com/b2bid/bidding-backend/internal/repository"
	"github.com/b2bid/bidding-backend/internal/repository/common"
)

// SeedService генерирует демонстрационные данные для разработки.
type SeedService struct {
	db          *sqlx.DB
	userRepo    *repository.UserRepository
	projectRepo *repository.ProjectRepository
}

// NewSeedService создаёт сервис генерации данных.
func NewSeedService(db *sqlx.DB, userRepo *repository.UserRepository, projectRepo *repository.ProjectRepository) *SeedService {
	return &SeedService{
		db:          db,
		userRepo:    userRepo,
		projectRepo: projectRepo,
	}
}

// SeedData генерирует закупщиков, поставщиков, проекты и заявки.
func (s *SeedService) SeedData(ctx context.Context, numBuyers, numSuppliers, numProjects int) error {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))

	buyers, suppliers, err := s.generateUsers(ctx, rng, numBuyers, numSuppliers)
	if err != nil {
		return fmt.Errorf("seed service: failed to generate users: %w", err)
	}

	projects, err := s.generateProjects(ctx, rng, buyers, numProjects)
	if err != nil {
		return fmt.Errorf("seed service: failed to generate projects: %w", err)
	}

	if err := s.generateBids(ctx, rng, projects, suppliers); err != nil {
		return fmt.Errorf("seed service: failed to generate bids: %w", err)
	}

	return nil
}

// generateUsers создаёт демонстрационные компании обеих ролей.
func (s *SeedService) generateUsers(ctx context.Context, rng *rand.Rand, numBuyers, numSuppliers int) ([]*models.User, []*models.User, error) {
	buyerNames := []string{
		"СтройИнвест", "ПромТехСнаб", "АгроХолдинг Восток", "ЭнергоМаш", "Ритейл Групп",
		"МедТехника Плюс", "ТрансЛогистик", "МеталлРезерв", "ХимПродукт", "ПищеПром Сервис",
	}
	supplierNames := []string{
		"УралПоставка", "СибСнаб", "ВолгаТрейд", "СеверКомплект", "ЮгОптТорг",
		"БалтСервис", "КамаРесурс", "ДонИмпорт", "ОкаДистрибуция", "АмурСбыт",
		"ЕнисейПром", "ЛенОблСнаб", "ТверьКомплект", "ТулаОпт", "КировПоставка",
	}
	contactNames := []string{
		"Александр Иванов", "Дмитрий Петров", "Елена Смирнова", "Ольга Козлова",
		"Сергей Соколов", "Анна Попова", "Михаил Лебедев", "Татьяна Новикова",
	}

	passwordHash, err := bcrypt.GenerateFromPassword([]byte("Password123"), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, err
	}

	createUser := func(companyName, role string, i int) (*models.User, error) {
		user := &models.User{
			Email:        fmt.Sprintf("%s%d@demo.b2bid.ru", role, i),
			CompanyName:  companyName,
			ContactName:  contactNames[rng.Intn(len(contactNames))],
			PasswordHash: string(passwordHash),
			Role:         role,
		}
		if err := s.userRepo.Create(ctx, user); err != nil {
			return nil, err
		}
		return user, nil
	}

	var buyers []*models.User
	for i := 0; i < numBuyers; i++ {
		user, err := createUser(buyerNames[i%len(buyerNames)], models.RoleBuyer, i)
		if err != nil {
			return nil, nil, err
		}
		buyers = append(buyers, user)
	}

	var suppliers []*models.User
	for i := 0; i < numSuppliers; i++ {
		user, err := createUser(supplierNames[i%len(supplierNames)], models.RoleSupplier, i)
		if err != nil {
			return nil, nil, err
		}
		suppliers = append(suppliers, user)
	}

	return buyers, suppliers, nil
}

// generateProjects создаёт открытые проекты закупок.
func (s *SeedService) generateProjects(ctx context.Context, rng *rand.Rand, buyers []*models.User, count int) ([]*models.Project, error) {
	titles := []string{
		"Поставка офисной мебели", "Закупка серверного оборудования", "Поставка строительных материалов",
		"Закупка спецодежды", "Поставка канцелярских товаров", "Закупка погрузочной техники",
		"Поставка компьютерной периферии", "Закупка лабораторного оборудования",
		"Поставка упаковочных материалов", "Закупка климатического оборудования",
	}
	categories := []string{"Оборудование", "Материалы", "Мебель", "ИТ", "Спецодежда"}
	regions := []string{"Москва", "Санкт-Петербург", "Екатеринбург", "Новосибирск", "Казань"}

	if len(buyers) == 0 {
		return nil, fmt.Errorf("нет закупщиков для генерации проектов")
	}

	var projects []*models.Project
	for i := 0; i < count; i++ {
		buyer := buyers[rng.Intn(len(buyers))]
		category := categories[rng.Intn(len(categories))]
		region := regions[rng.Intn(len(regions))]
		budget := float64(100000 + rng.Intn(9900000))
		requirements := "Поставка согласно техническому заданию. Оплата по факту приёмки."

		project := &models.Project{
			BuyerID:      buyer.ID,
			Title:        titles[i%len(titles)],
			Category:     &category,
			Region:       &region,
			BudgetLimit:  &budget,
			Requirements: &requirements,
			Deadline:     time.Now().AddDate(0, 0, 7+rng.Intn(21)),
			Status:       models.ProjectStatusOpen,
		}
		if err := s.projectRepo.Create(ctx, project); err != nil {
			return nil, err
		}
		projects = append(projects, project)
	}

	return projects, nil
}

// generateBids создаёт заявки поставщиков батчевой вставкой: не больше
// одной заявки на пару (проект, поставщик).
func (s *SeedService) generateBids(ctx context.Context, rng *rand.Rand, projects []*models.Project, suppliers []*models.User) error {
	comments := []string{
		"Готовы выполнить поставку точно в срок.",
		"Работаем по предоплате 30%, остальное по факту.",
		"Собственный склад и логистика, возможна отгрузка раньше срока.",
		"Предоставляем гарантию 24 месяца на всю продукцию.",
	}

	return common.WithTransaction(ctx, s.db, func(tx *sqlx.Tx) error {
		inserter := common.NewBatchInserter(
			tx,
			`INSERT INTO bids (project_id, supplier_id, price, delivery_days, comment, status)`,
			6,
			100,
		)

		for _, project := range projects {
			// Случайное подмножество поставщиков без повторов.
			perm := rng.Perm(len(suppliers))
			bidders := 2 + rng.Intn(4)
			if bidders > len(suppliers) {
				bidders = len(suppliers)
			}

			for _, idx := range perm[:bidders] {
				supplier := suppliers[idx]
				price := *project.BudgetLimit * (0.5 + rng.Float64()*0.5)
				deliveryDays := 3 + rng.Intn(60)
				comment := comments[rng.Intn(len(comments))]

				if err := inserter.Add(ctx,
					project.ID, supplier.ID, price, deliveryDays, comment, models.BidStatusSubmitted,
				); err != nil {
					return err
				}
			}
		}

		return inserter.Flush(ctx)
	})
}
