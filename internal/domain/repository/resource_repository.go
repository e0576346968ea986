package repository

import (
	"context"

	"github.com/YouSangSon/tour-service/internal/domain/entity"
	"github.com/YouSangSon/tour-service/internal/domain/query"
)

// ResourceRepository는 Resource 팩토리가 사용하는 공통 저장소 인터페이스입니다
// 모든 에러는 apperrors 분류(not_found, conflict, validation_failure, internal)로 반환됩니다
type ResourceRepository[T entity.Entity] interface {
	// Create는 문서를 저장하고 생성된 ID를 doc에 설정합니다
	Create(ctx context.Context, doc T) error

	// FindByID는 ID로 문서를 조회합니다
	// expand는 함께 확장할 관계 이름입니다 (예: "reviews")
	FindByID(ctx context.Context, id string, expand ...string) (T, error)

	// Find는 조회 명세를 필터 → 정렬 → 필드 선택 → 페이지 순서로 실행합니다
	Find(ctx context.Context, spec *query.Spec) ([]T, error)

	// Update는 버전(__v)이 일치할 때만 문서를 교체합니다
	// 버전이 다르면 conflict, 문서가 없으면 not_found입니다
	Update(ctx context.Context, doc T) error

	// Delete는 문서를 삭제하고 삭제된 문서를 반환합니다
	Delete(ctx context.Context, id string) (T, error)
}

// TourRepository는 투어 저장소 인터페이스입니다
type TourRepository interface {
	ResourceRepository[*entity.Tour]

	// FindBySlug는 slug로 투어를 조회합니다 (리뷰 확장 포함)
	FindBySlug(ctx context.Context, slug string) (*entity.Tour, error)

	// FindByIDs는 여러 투어를 한 번에 조회합니다
	FindByIDs(ctx context.Context, ids []string) ([]*entity.Tour, error)

	// Stats는 평점 minRating 이상 투어의 난이도별 통계를 반환합니다
	Stats(ctx context.Context, minRating float64) ([]entity.TourStats, error)

	// MonthlyPlan은 해당 연도의 월별 투어 시작 계획을 반환합니다
	MonthlyPlan(ctx context.Context, year int) ([]entity.MonthlyPlan, error)

	// Within은 중심점(lng, lat)으로부터 radius(라디안) 안의 투어를 반환합니다
	Within(ctx context.Context, lng, lat, radius float64) ([]*entity.Tour, error)

	// Distances는 중심점으로부터 각 투어까지의 거리(multiplier 적용)를 반환합니다
	Distances(ctx context.Context, lng, lat, multiplier float64) ([]entity.TourDistance, error)

	// UpdateRatings는 투어의 평점 집계 필드를 갱신합니다
	UpdateRatings(ctx context.Context, id string, quantity int, average float64) error
}

// ReviewRepository는 리뷰 저장소 인터페이스입니다
type ReviewRepository interface {
	ResourceRepository[*entity.Review]

	// RatingSummary는 투어의 리뷰 개수와 평균 평점을 집계합니다
	RatingSummary(ctx context.Context, tourID string) (entity.RatingSummary, error)
}

// UserRepository는 사용자 저장소 인터페이스입니다
// 비활성 사용자는 모든 조회에서 제외됩니다
type UserRepository interface {
	ResourceRepository[*entity.User]

	// FindByEmail은 이메일로 활성 사용자를 조회합니다
	FindByEmail(ctx context.Context, email string) (*entity.User, error)

	// FindByResetToken은 만료되지 않은 해시 재설정 토큰으로 사용자를 조회합니다
	FindByResetToken(ctx context.Context, hashedToken string) (*entity.User, error)

	// Deactivate는 사용자를 비활성화합니다 (soft delete)
	Deactivate(ctx context.Context, id string) error
}

// BookingRepository는 예약 저장소 인터페이스입니다
type BookingRepository interface {
	ResourceRepository[*entity.Booking]

	// FindByUser는 사용자의 모든 예약을 조회합니다
	FindByUser(ctx context.Context, userID string) ([]*entity.Booking, error)

	// ExistsBySession은 결제 세션으로 생성된 예약이 있는지 확인합니다
	ExistsBySession(ctx context.Context, sessionID string) (bool, error)
}
