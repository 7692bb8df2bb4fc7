package analysis

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"testlens/internal/config"
)

const coreCsproj = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup>
</Project>`

const testsCsproj = `<Project Sdk="Microsoft.NET.Sdk">
  <PropertyGroup><TargetFramework>net8.0</TargetFramework></PropertyGroup>
  <ItemGroup>
    <PackageReference Include="xunit" Version="2.6.1" />
    <PackageReference Include="Moq" Version="4.20.70" />
    <PackageReference Include="FluentAssertions" Version="6.12.0" />
  </ItemGroup>
</Project>`

const userServiceCs = `namespace Fujiq.Core;

public class UserService
{
    private readonly IUserRepository _repository;

    public UserService(IUserRepository repository)
    {
        _repository = repository;
    }

    public User GetUser(int id) => _repository.Find(id);
}

public class OrderService
{
    public void Place() { var stamp = DateTime.Now; }
}
`

const userServiceTestsCs = `using Xunit;

namespace Fujiq.Core.Tests;

public class UserServiceTests
{
    [Fact]
    public void GetUser_ReturnsUser() { }

    [Fact]
    public void GetUser_Throws_WhenMissing() { }
}
`

func buildWorkspace(t *testing.T) string {
	t.Helper()
	root := t.TempDir()

	files := map[string]string{
		filepath.Join("Fujiq.Core", "Fujiq.Core.csproj"):              coreCsproj,
		filepath.Join("Fujiq.Core", "UserService.cs"):                 userServiceCs,
		filepath.Join("Fujiq.Core.Tests", "Fujiq.Core.Tests.csproj"):  testsCsproj,
		filepath.Join("Fujiq.Core.Tests", "UserServiceTests.cs"):      userServiceTestsCs,
	}
	for name, content := range files {
		path := filepath.Join(root, name)
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}
	return root
}

func TestAnalyzerRun(t *testing.T) {
	root := buildWorkspace(t)

	analyzer := NewAnalyzer(config.DefaultConfig())
	report, err := analyzer.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Equal(t, 2, report.SourceFiles)
	assert.ElementsMatch(t, []string{"Fujiq.Core", "Fujiq.Core.Tests"}, report.Projects)
	assert.Equal(t, []string{"Fujiq.Core.Tests"}, report.TestProjects)
	assert.True(t, report.HasTestProject())

	assert.Equal(t, "xunit", report.Stack.TestFramework)
	assert.True(t, report.Stack.HasMoq)
	assert.True(t, report.Stack.HasFluentAssertions)
	assert.False(t, report.Stack.HasAutoFixture)

	assert.Equal(t, 1, report.TestClasses)
	assert.Equal(t, 2, report.TestMethods)

	require.Len(t, report.Classes, 2)

	byName := map[string]ClassInfo{}
	for _, c := range report.Classes {
		byName[c.Name] = c
	}

	user := byName["UserService"]
	assert.True(t, user.HasTests)
	assert.Equal(t, "UserServiceTests", user.TestClass)
	assert.Equal(t, 2, user.TestMethods)
	assert.Equal(t, "Fujiq.Core", user.Project)
	require.Len(t, user.CtorDeps, 1)
	assert.Equal(t, "IUserRepository", user.CtorDeps[0].Type)

	order := byName["OrderService"]
	assert.False(t, order.HasTests)
	assert.Contains(t, order.Smells, "direct system clock access")
}

func TestReportUntestedAndCoverage(t *testing.T) {
	root := buildWorkspace(t)

	analyzer := NewAnalyzer(config.DefaultConfig())
	report, err := analyzer.Run(context.Background(), root)
	require.NoError(t, err)

	untested := report.Untested()
	require.Len(t, untested, 1)
	assert.Equal(t, "OrderService", untested[0].Name)

	assert.InDelta(t, 50.0, report.Coverage(), 0.01)
}

func TestDeriveTopics(t *testing.T) {
	root := buildWorkspace(t)

	analyzer := NewAnalyzer(config.DefaultConfig())
	report, err := analyzer.Run(context.Background(), root)
	require.NoError(t, err)

	assert.Contains(t, report.Topics, "fundamentals")
	assert.Contains(t, report.Topics, "assertions")
	// No AutoFixture and coverage below 80: both gaps surface.
	assert.Contains(t, report.Topics, "test-data")
	assert.Contains(t, report.Topics, "coverage")
}

func TestDomainClassWithTestSuffixStaysInReport(t *testing.T) {
	root := buildWorkspace(t)

	stressTest := `namespace Fujiq.Core;

public class StressTest
{
    public void Run() { }
}
`
	path := filepath.Join(root, "Fujiq.Core", "StressTest.cs")
	require.NoError(t, os.WriteFile(path, []byte(stressTest), 0644))

	analyzer := NewAnalyzer(config.DefaultConfig())
	report, err := analyzer.Run(context.Background(), root)
	require.NoError(t, err)

	// A name ending in Test is not a test class when it lives in a source
	// project and carries no test methods.
	names := make([]string, 0, len(report.Classes))
	for _, c := range report.Classes {
		names = append(names, c.Name)
	}
	assert.Contains(t, names, "StressTest")
	assert.Equal(t, 1, report.TestClasses)
}

func TestAnalyzerRunCancelled(t *testing.T) {
	root := buildWorkspace(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	analyzer := NewAnalyzer(config.DefaultConfig())
	_, err := analyzer.Run(ctx, root)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestAnalyzerEmptyWorkspace(t *testing.T) {
	analyzer := NewAnalyzer(config.DefaultConfig())
	report, err := analyzer.Run(context.Background(), t.TempDir())
	require.NoError(t, err)

	assert.Empty(t, report.Classes)
	assert.False(t, report.HasTestProject())
	assert.Equal(t, 0.0, report.Coverage())
}
